// backend/services/room_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"go-brainstorm/backend/mocks"
	"go-brainstorm/backend/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newServiceWithMock(t *testing.T) (*RoomService, *mocks.MockRoomStore) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRoomStore(ctrl)
	return NewRoomService(store), store
}

func TestCreateRoom_DefaultName(t *testing.T) {
	service, store := newServiceWithMock(t)

	room := &models.Room{Code: "ABCDE", Name: "Alex 的腦力激盪"}
	// 未指定房間名稱時，應以管理者名稱產生預設名稱
	store.EXPECT().
		CreateRoom(gomock.Any(), "Alex", "Alex 的腦力激盪").
		Return(room, nil)

	result, err := service.CreateRoom(context.Background(), CreateRoomRequest{AdminName: "Alex"})

	assert.NoError(t, err, "建立房間不應該返回錯誤")
	assert.Equal(t, room, result.Room)
	assert.Contains(t, result.Message, "ABCDE", "成功訊息應包含房間代碼")
}

func TestCreateRoom_ValidationFailure(t *testing.T) {
	service, store := newServiceWithMock(t)

	// 欄位驗證失敗時不應觸碰 Store
	store.EXPECT().CreateRoom(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.CreateRoom(context.Background(), CreateRoomRequest{AdminName: ""})

	assert.ErrorIs(t, err, models.ErrInvalidRequest, "缺少管理者名稱應返回 ErrInvalidRequest")
}

func TestJoinRoom_NormalizesCode(t *testing.T) {
	service, store := newServiceWithMock(t)

	room := &models.Room{Code: "ABCDE"}
	participant := &models.Participant{ID: "p1", Name: "Sam"}
	// 代碼應先轉大寫再交給 Store
	store.EXPECT().
		JoinRoom(gomock.Any(), "ABCDE", "Sam").
		Return(room, participant, nil)

	result, err := service.JoinRoom(context.Background(), " abcde ", JoinRoomRequest{Name: "Sam"})

	assert.NoError(t, err, "加入房間不應該返回錯誤")
	assert.Equal(t, "p1", result.Participant.ID)
	assert.Contains(t, result.Message, "Sam")
}

func TestEndRoom_ForwardsTypedError(t *testing.T) {
	service, store := newServiceWithMock(t)

	// Store 的類型化失敗必須原封不動帶回給傳輸層
	store.EXPECT().
		EndRoom(gomock.Any(), "ABCDE", "p2").
		Return(nil, models.ErrForbidden)

	_, err := service.EndRoom(context.Background(), "ABCDE", EndRoomRequest{RequesterID: "p2"})

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestSetPhase_RejectsUnknownPhase(t *testing.T) {
	service, store := newServiceWithMock(t)

	store.EXPECT().SetPhase(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.SetPhase(context.Background(), "ABCDE", SetPhaseRequest{
		RequesterID: "p1",
		Phase:       "retrospective",
	})

	assert.ErrorIs(t, err, models.ErrInvalidRequest, "不合法的階段值應返回 ErrInvalidRequest")
}

func TestSetPhase_PassesPhaseEndsAt(t *testing.T) {
	service, store := newServiceWithMock(t)

	endsAt := time.Now().Add(10 * time.Minute)
	store.EXPECT().
		SetPhase(gomock.Any(), "ABCDE", "p1", models.PhaseEnded, &endsAt).
		Return(&models.Room{Code: "ABCDE", Phase: models.PhaseEnded}, nil)

	result, err := service.SetPhase(context.Background(), "ABCDE", SetPhaseRequest{
		RequesterID: "p1",
		Phase:       "ended",
		PhaseEndsAt: &endsAt,
	})

	assert.NoError(t, err)
	assert.Contains(t, result.Message, "ended")
}

func TestToggleVote_Messages(t *testing.T) {
	service, store := newServiceWithMock(t)

	room := &models.Room{Code: "ABCDE"}
	store.EXPECT().ToggleVote(gomock.Any(), "ABCDE", "p1", "idea1").Return(room, true, nil)
	store.EXPECT().ToggleVote(gomock.Any(), "ABCDE", "p1", "idea1").Return(room, false, nil)

	result, err := service.ToggleVote(context.Background(), "ABCDE", "idea1", ToggleVoteRequest{ParticipantID: "p1"})
	assert.NoError(t, err)
	assert.Equal(t, "已投下一票", result.Message)

	result, err = service.ToggleVote(context.Background(), "ABCDE", "idea1", ToggleVoteRequest{ParticipantID: "p1"})
	assert.NoError(t, err)
	assert.Equal(t, "已收回一票", result.Message)
}

func TestAddIdea_TitleRequired(t *testing.T) {
	service, store := newServiceWithMock(t)

	store.EXPECT().AddIdea(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.AddIdea(context.Background(), "ABCDE", AddIdeaRequest{
		ParticipantID: "p1",
		Title:         "",
	})

	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestAddAction_TooManyTags(t *testing.T) {
	service, store := newServiceWithMock(t)

	store.EXPECT().AddAction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.AddAction(context.Background(), "ABCDE", "idea1", AddActionRequest{
		ParticipantID: "p1",
		Text:          "準備簡報",
		Tags:          []string{"a", "b", "c", "d"}, // 超過 3 個標籤
	})

	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestRemoveParticipant_RequiresIDs(t *testing.T) {
	service, store := newServiceWithMock(t)

	store.EXPECT().RemoveParticipant(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.RemoveParticipant(context.Background(), "ABCDE", "", "p2")

	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestIsMember(t *testing.T) {
	service, store := newServiceWithMock(t)

	room := &models.Room{
		Code: "ABCDE",
		Participants: []models.Participant{
			{ID: "p1", Name: "Alex", Role: models.RoleAdmin},
		},
	}
	store.EXPECT().GetRoom(gomock.Any(), "ABCDE").Return(room, nil).Times(2)

	got, err := service.IsMember(context.Background(), "ABCDE", "p1")
	assert.NoError(t, err, "現任成員應通過入場檢查")
	assert.Equal(t, room, got)

	_, err = service.IsMember(context.Background(), "ABCDE", "stranger")
	assert.ErrorIs(t, err, models.ErrForbidden, "非成員應返回 ErrForbidden")
}
