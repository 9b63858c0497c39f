// backend/websocket/websocket_test.go
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-brainstorm/backend/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomWithParticipants(ids ...string) *models.Room {
	room := &models.Room{Code: "ABCDE", Name: "Kickoff", AdminName: "Alex", Phase: models.PhaseIdeate}
	for i, id := range ids {
		role := models.RoleParticipant
		if i == 0 {
			role = models.RoleAdmin
		}
		name := "Alex"
		if i > 0 {
			name = "成員" + id
		}
		room.Participants = append(room.Participants, models.Participant{ID: id, Name: name, Role: role})
	}
	return room
}

func TestTransformEvent_Update(t *testing.T) {
	room := roomWithParticipants("p1", "p2")

	event, terminal := TransformEvent(models.FeedEvent{Type: models.FeedSnapshot, Room: room}, "p2")

	assert.False(t, terminal, "成員還在名單上時不應是終止事件")
	assert.Equal(t, models.ClientUpdate, event.Type)
	assert.Equal(t, room, event.Room)
}

func TestTransformEvent_Removed(t *testing.T) {
	// 快照中已沒有 p2：應轉換成 removed 並帶上管理者名稱
	room := roomWithParticipants("p1")

	event, terminal := TransformEvent(models.FeedEvent{Type: models.FeedSnapshot, Room: room}, "p2")

	assert.True(t, terminal, "被移出房間是終止事件")
	assert.Equal(t, models.ClientRemoved, event.Type)
	assert.Equal(t, "Alex", event.AdminName, "removed 事件應指名管理者")
}

func TestTransformEvent_Closed(t *testing.T) {
	event, terminal := TransformEvent(models.FeedEvent{Type: models.FeedDeleted, AdminName: "Alex"}, "p2")

	assert.True(t, terminal)
	assert.Equal(t, models.ClientClosed, event.Type)
	assert.Equal(t, "Alex", event.AdminName)
}

func TestTransformEvent_Broken(t *testing.T) {
	event, terminal := TransformEvent(models.FeedEvent{Type: models.FeedBroken}, "p2")

	assert.True(t, terminal)
	assert.Equal(t, models.ClientError, event.Type)
}

// fakeFeed 以固定通道模擬 Change Feed Publisher
type fakeFeed struct {
	ch chan models.FeedEvent

	mu           sync.Mutex
	unsubscribed bool
}

func (f *fakeFeed) Subscribe(ctx context.Context, code string) (<-chan models.FeedEvent, func(), error) {
	return f.ch, func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) wasUnsubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}

// fakeAdmission 以記憶體中的房間快照回答入場檢查。
// errAfterFirst 可讓第一次檢查通過、之後的檢查失敗，
// 用來模擬房間在訂閱與抓快照之間消失的情況。
type fakeAdmission struct {
	mu            sync.Mutex
	room          *models.Room
	errAfterFirst error
	calls         int
}

func (f *fakeAdmission) IsMember(ctx context.Context, code, participantID string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.errAfterFirst != nil && f.calls > 1 {
		return nil, f.errAfterFirst
	}
	if f.room == nil || f.room.Code != code {
		return nil, models.ErrRoomNotFound
	}
	if f.room.FindParticipant(participantID) == nil {
		return nil, models.ErrForbidden
	}
	return f.room, nil
}

func readClientEvent(t *testing.T, conn *websocket.Conn) models.ClientEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err, "應能在期限內讀到事件")

	var event models.ClientEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func TestServeWS_InitThenUpdateThenRemoved(t *testing.T) {
	feed := &fakeFeed{ch: make(chan models.FeedEvent, 8)}
	admission := &fakeAdmission{room: roomWithParticipants("p1", "p2")}

	hub := NewHub(feed, admission)
	go hub.Run()
	defer hub.Shutdown()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?code=ABCDE&participantId=p2"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "現任成員應能建立訂閱連線")
	defer conn.Close()

	// 連線建立後第一個事件必須是 init，且帶有完整快照
	event := readClientEvent(t, conn)
	assert.Equal(t, models.ClientInit, event.Type)
	require.NotNil(t, event.Room)
	assert.Equal(t, "ABCDE", event.Room.Code)

	// 一般更新會轉發為 update
	feed.ch <- models.FeedEvent{Type: models.FeedSnapshot, Room: roomWithParticipants("p1", "p2")}
	event = readClientEvent(t, conn)
	assert.Equal(t, models.ClientUpdate, event.Type)

	// 快照中不再包含 p2：應收到 removed，之後伺服器關閉連線
	feed.ch <- models.FeedEvent{Type: models.FeedSnapshot, Room: roomWithParticipants("p1")}
	event = readClientEvent(t, conn)
	assert.Equal(t, models.ClientRemoved, event.Type)
	assert.Equal(t, "Alex", event.AdminName)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "終止事件之後伺服器應關閉連線")

	// 連線結束後必須向發布端取消訂閱
	assert.Eventually(t, feed.wasUnsubscribed, 2*time.Second, 10*time.Millisecond,
		"斷線後應取消訂閱以釋放觀察資源")
}

func TestForwardPump_DrainsBufferedEventAfterUnregister(t *testing.T) {
	feed := &fakeFeed{ch: make(chan models.FeedEvent, 8)}
	admission := &fakeAdmission{room: roomWithParticipants("p1", "p2")}

	hub := NewHub(feed, admission)
	go hub.Run()
	defer hub.Shutdown()

	client := &Client{
		hub:           hub,
		send:          make(chan models.ClientEvent, 8),
		quit:          make(chan struct{}),
		Code:          "ABCDE",
		ParticipantID: "p2",
		events:        feed.ch,
		unsubscribe:   func() {},
	}
	hub.register <- client

	// 事件通道裡還留著一個快照時就註銷：轉發端必須能安全收尾，不能炸掉整個行程
	feed.ch <- models.FeedEvent{Type: models.FeedSnapshot, Room: roomWithParticipants("p1", "p2")}
	client.requestUnregister()
	<-client.quit // 等 Hub 處理完註銷

	done := make(chan struct{})
	go func() {
		defer close(done)
		client.forwardPump()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forwardPump 應在註銷後自行結束")
	}

	// send 由轉發端收尾關閉，殘留事件最多被轉發、絕不會寫進已關閉的通道
	for range client.send {
	}
}

func TestServeWS_RoomEndedBetweenSubscribeAndSnapshot(t *testing.T) {
	feed := &fakeFeed{ch: make(chan models.FeedEvent)}
	// 第一次入場檢查通過，之後房間已被結束
	admission := &fakeAdmission{
		room:          roomWithParticipants("p1"),
		errAfterFirst: models.ErrRoomNotFound,
	}

	hub := NewHub(feed, admission)
	go hub.Run()
	defer hub.Shutdown()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?code=ABCDE&participantId=p1"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "房間消失應回 404 而非 403")
	assert.Eventually(t, feed.wasUnsubscribed, 2*time.Second, 10*time.Millisecond,
		"升級失敗時應取消訂閱以釋放觀察資源")
}

func TestServeWS_RejectsNonMember(t *testing.T) {
	feed := &fakeFeed{ch: make(chan models.FeedEvent)}
	admission := &fakeAdmission{room: roomWithParticipants("p1")}

	hub := NewHub(feed, admission)
	go hub.Run()
	defer hub.Shutdown()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?code=ABCDE&participantId=stranger"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	assert.Error(t, err, "非成員的訂閱應被拒絕")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServeWS_RoomNotFound(t *testing.T) {
	feed := &fakeFeed{ch: make(chan models.FeedEvent)}
	admission := &fakeAdmission{}

	hub := NewHub(feed, admission)
	go hub.Run()
	defer hub.Shutdown()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?code=ZZZZZ&participantId=p1"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
