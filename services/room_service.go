package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-brainstorm/backend/models"
	"go-brainstorm/backend/utils"

	"github.com/go-playground/validator/v10"
)

// RoomStore 定義 Mutation Gateway 依賴的儲存操作。
// 具體實作在 database 套件；測試時以 mock 替換。
type RoomStore interface {
	CreateRoom(ctx context.Context, adminName, roomName string) (*models.Room, error)
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	JoinRoom(ctx context.Context, code, name string) (*models.Room, *models.Participant, error)
	EndRoom(ctx context.Context, code, requesterID string) (*models.Room, error)
	RemoveParticipant(ctx context.Context, code, requesterID, targetID string) (*models.Room, error)
	SetPhase(ctx context.Context, code, requesterID string, phase models.Phase, phaseEndsAt *time.Time) (*models.Room, error)
	AddIdea(ctx context.Context, code, participantID, title, description string) (*models.Room, *models.Idea, error)
	ToggleVote(ctx context.Context, code, participantID, ideaID string) (*models.Room, bool, error)
	AddDetail(ctx context.Context, code, participantID, ideaID, text string) (*models.Room, *models.IdeaDetail, error)
	AddAction(ctx context.Context, code, participantID, ideaID, text, assignedTo string, tags []string) (*models.Room, *models.ActionItem, error)
	ToggleActionCompletion(ctx context.Context, code, participantID, ideaID, actionID string) (*models.Room, bool, error)
}

// CreateRoomRequest 定義建立房間的請求欄位
type CreateRoomRequest struct {
	AdminName string `json:"adminName" validate:"required,max=50"`
	RoomName  string `json:"roomName"  validate:"max=80"`
}

// JoinRoomRequest 定義加入房間的請求欄位
type JoinRoomRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// EndRoomRequest 定義結束房間的請求欄位
type EndRoomRequest struct {
	RequesterID string `json:"requesterId" validate:"required"`
}

// SetPhaseRequest 定義切換階段的請求欄位
type SetPhaseRequest struct {
	RequesterID string     `json:"requesterId" validate:"required"`
	Phase       string     `json:"phase"       validate:"required,oneof=ideate ended planning"`
	PhaseEndsAt *time.Time `json:"phaseEndsAt,omitempty"`
}

// AddIdeaRequest 定義新增提案的請求欄位
type AddIdeaRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
	Title         string `json:"title"         validate:"required,max=120"`
	Description   string `json:"description"   validate:"max=2000"`
}

// ToggleVoteRequest 定義切換投票的請求欄位
type ToggleVoteRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
}

// AddDetailRequest 定義附加補充說明的請求欄位
type AddDetailRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
	Text          string `json:"text"          validate:"required,max=1000"`
}

// AddActionRequest 定義新增行動項目的請求欄位
type AddActionRequest struct {
	ParticipantID string   `json:"participantId" validate:"required"`
	Text          string   `json:"text"          validate:"required,max=1000"`
	AssignedTo    string   `json:"assignedTo,omitempty"`
	Tags          []string `json:"tags"          validate:"max=3,dive,required,max=24"`
}

// ToggleActionRequest 定義切換行動項目完成狀態的請求欄位
type ToggleActionRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
}

// MutationResult 是每個成功變更的回傳內容：更新後的快照加上一句給使用者看的訊息
type MutationResult struct {
	Room    *models.Room `json:"room"`
	Message string       `json:"message"`
}

// JoinResult 額外帶回加入者的身分，讓前端知道自己的參與者 ID
type JoinResult struct {
	Room        *models.Room        `json:"room"`
	Participant *models.Participant `json:"participant"`
	Message     string              `json:"message"`
}

// RoomService 是 Mutation Gateway：驗證每個請求的欄位與身分後，
// 向 Room Store 發出恰好一次原子操作，並把類型化失敗原封不動帶回給傳輸層。
type RoomService struct {
	store    RoomStore
	validate *validator.Validate
}

// NewRoomService 建立 RoomService 實例
func NewRoomService(store RoomStore) *RoomService {
	return &RoomService{
		store:    store,
		validate: validator.New(),
	}
}

// check 執行欄位驗證，失敗時包成 ErrInvalidRequest 讓傳輸層對應到 400
func (s *RoomService) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	return nil
}

// CreateRoom 建立房間。房間名稱未指定時以管理者名稱產生預設名稱。
func (s *RoomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	roomName := strings.TrimSpace(req.RoomName)
	if roomName == "" {
		roomName = req.AdminName + " 的腦力激盪"
	}
	room, err := s.store.CreateRoom(ctx, strings.TrimSpace(req.AdminName), roomName)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Room: room, Message: "房間已建立，代碼為 " + room.Code}, nil
}

// GetRoom 取得唯讀快照
func (s *RoomService) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	return s.store.GetRoom(ctx, utils.NormalizeRoomCode(code))
}

// JoinRoom 加入房間。同名（不分大小寫）者會取回既有身分，重複呼叫是冪等的。
func (s *RoomService) JoinRoom(ctx context.Context, code string, req JoinRoomRequest) (*JoinResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, participant, err := s.store.JoinRoom(ctx, utils.NormalizeRoomCode(code), strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	return &JoinResult{
		Room:        room,
		Participant: participant,
		Message:     participant.Name + " 已加入房間",
	}, nil
}

// EndRoom 結束房間（僅管理者）。刪除會經由變更串流以刪除訊號通知所有訂閱者。
func (s *RoomService) EndRoom(ctx context.Context, code string, req EndRoomRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, err := s.store.EndRoom(ctx, utils.NormalizeRoomCode(code), req.RequesterID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Room: room, Message: "房間已結束"}, nil
}

// RemoveParticipant 將參與者移出房間（僅管理者，且不能移除自己）
func (s *RoomService) RemoveParticipant(ctx context.Context, code, requesterID, targetID string) (*MutationResult, error) {
	if requesterID == "" || targetID == "" {
		return nil, fmt.Errorf("%w: requesterId and participantId are required", models.ErrInvalidRequest)
	}
	room, err := s.store.RemoveParticipant(ctx, utils.NormalizeRoomCode(code), requesterID, targetID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Room: room, Message: "參與者已移出房間"}, nil
}

// SetPhase 切換房間階段（僅管理者）。三個合法值之間可任意切換，不強制順序。
func (s *RoomService) SetPhase(ctx context.Context, code string, req SetPhaseRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, err := s.store.SetPhase(ctx, utils.NormalizeRoomCode(code), req.RequesterID, models.Phase(req.Phase), req.PhaseEndsAt)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Room: room, Message: "階段已切換為 " + req.Phase}, nil
}

// AddIdea 新增提案。ended 階段禁止；一般參與者受每房 3 個提案的配額限制。
func (s *RoomService) AddIdea(ctx context.Context, code string, req AddIdeaRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, idea, err := s.store.AddIdea(ctx, utils.NormalizeRoomCode(code), req.ParticipantID, strings.TrimSpace(req.Title), strings.TrimSpace(req.Description))
	if err != nil {
		return nil, err
	}
	return &MutationResult{Room: room, Message: "提案「" + idea.Title + "」已新增"}, nil
}

// ToggleVote 切換投票。同一個請求重送是安全的（操作自反）。
func (s *RoomService) ToggleVote(ctx context.Context, code, ideaID string, req ToggleVoteRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, voted, err := s.store.ToggleVote(ctx, utils.NormalizeRoomCode(code), req.ParticipantID, ideaID)
	if err != nil {
		return nil, err
	}
	message := "已收回一票"
	if voted {
		message = "已投下一票"
	}
	return &MutationResult{Room: room, Message: message}, nil
}

// AddDetail 為提案附加補充說明，任何階段皆可
func (s *RoomService) AddDetail(ctx context.Context, code, ideaID string, req AddDetailRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, _, err := s.store.AddDetail(ctx, utils.NormalizeRoomCode(code), req.ParticipantID, ideaID, strings.TrimSpace(req.Text))
	if err != nil {
		return nil, err
	}
	return &MutationResult{Room: room, Message: "補充說明已新增"}, nil
}

// AddAction 為提案新增行動項目（僅管理者）
func (s *RoomService) AddAction(ctx context.Context, code, ideaID string, req AddActionRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, _, err := s.store.AddAction(ctx, utils.NormalizeRoomCode(code), req.ParticipantID, ideaID, strings.TrimSpace(req.Text), req.AssignedTo, req.Tags)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Room: room, Message: "行動項目已新增"}, nil
}

// ToggleActionCompletion 翻轉行動項目的完成狀態，任何成員皆可
func (s *RoomService) ToggleActionCompletion(ctx context.Context, code, ideaID, actionID string, req ToggleActionRequest) (*MutationResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	room, completed, err := s.store.ToggleActionCompletion(ctx, utils.NormalizeRoomCode(code), req.ParticipantID, ideaID, actionID)
	if err != nil {
		return nil, err
	}
	message := "行動項目已標記為未完成"
	if completed {
		message = "行動項目已標記為完成"
	}
	return &MutationResult{Room: room, Message: message}, nil
}

// IsMember 檢查參與者目前是否在房間名單上（Subscriber Fan-out 的入場檢查）
func (s *RoomService) IsMember(ctx context.Context, code, participantID string) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, utils.NormalizeRoomCode(code))
	if err != nil {
		return nil, err
	}
	if room.FindParticipant(participantID) == nil {
		return nil, models.ErrForbidden
	}
	return room, nil
}
