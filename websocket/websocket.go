package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go-brainstorm/backend/models"
	"go-brainstorm/backend/utils"

	"github.com/gorilla/websocket"
)

const (
	// 將訊息寫入到遠端對等點的最長時間
	writeWait = 10 * time.Second

	// 允許從遠端對等點讀取下一個 pong 訊息的最長時間。
	pongWait = 60 * time.Second

	// 發送 ping 訊息給遠端對等點的週期。
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// upgrader 用於將 HTTP 連線升級為 WebSocket 連線
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 設定true:允許所有來源的連線
		return true
	},
}

// EventFeed 定義 Change Feed Publisher 提供的訂閱介面
type EventFeed interface {
	Subscribe(ctx context.Context, code string) (<-chan models.FeedEvent, func(), error)
}

// Admission 定義入場檢查：參與者目前必須在房間名單上
type Admission interface {
	IsMember(ctx context.Context, code, participantID string) (*models.Room, error)
}

// Client 代表一條 (房間, 參與者) 的長連線。
// send 只由 forwardPump 這一側寫入與關閉；Hub 要終止客戶端時關閉 quit，
// 不直接碰 send，避免對使用中的通道做關閉。
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan models.ClientEvent // 送往前端的事件緩衝通道
	quit          chan struct{}           // Hub 註銷或關機時關閉
	Code          string                  // 房間代碼
	ParticipantID string
	events        <-chan models.FeedEvent // 來自 Change Feed Publisher 的事件
	unsubscribe   func()
}

// Hub 維護所有活躍的訂閱連線，負責註冊、註銷與關機時的確定性清理。
// Hub 是顯式建立並注入的物件，不是全域狀態。
type Hub struct {
	feed      EventFeed
	admission Admission

	clientsByRoom map[string]map[*Client]bool
	register      chan *Client
	unregister    chan *Client
	stop          chan struct{}
	done          chan struct{}
}

// NewHub 創建並返回一個新的 Hub 實例
func NewHub(feed EventFeed, admission Admission) *Hub {
	return &Hub{
		feed:          feed,
		admission:     admission,
		clientsByRoom: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Run 啟動 Hub 的運行迴圈
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			if _, ok := h.clientsByRoom[client.Code]; !ok {
				h.clientsByRoom[client.Code] = make(map[*Client]bool)
			}
			h.clientsByRoom[client.Code][client] = true
			log.Printf("Participant %s subscribed to room %s. Total subscribers in room: %d",
				client.ParticipantID, client.Code, len(h.clientsByRoom[client.Code]))

		case client := <-h.unregister:
			if clients, ok := h.clientsByRoom[client.Code]; ok && clients[client] {
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.clientsByRoom, client.Code)
				}
				client.unsubscribe()
				close(client.quit)
				log.Printf("Participant %s unsubscribed from room %s", client.ParticipantID, client.Code)
			}

		case <-h.stop:
			// 關機：關閉所有連線並釋放所有房間的觀察資源
			for code, clients := range h.clientsByRoom {
				for client := range clients {
					client.unsubscribe()
					close(client.quit)
				}
				delete(h.clientsByRoom, code)
			}
			log.Println("Subscriber hub shut down, all clients closed.")
			return
		}
	}
}

// Shutdown 停止 Hub 並等待清理完成
func (h *Hub) Shutdown() {
	close(h.stop)
	<-h.done
}

// requestUnregister 請求 Hub 註銷客戶端；Hub 已停止時直接返回
func (c *Client) requestUnregister() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// TransformEvent 把房間層級的事件轉換成該參與者視角的事件。
// 回傳的第二個值表示這是否為終止事件（送出後應關閉連線）。
func TransformEvent(event models.FeedEvent, participantID string) (models.ClientEvent, bool) {
	switch event.Type {
	case models.FeedDeleted:
		return models.ClientEvent{
			Type:      models.ClientClosed,
			AdminName: event.AdminName,
			Message:   "房間已由管理者結束",
		}, true

	case models.FeedBroken:
		return models.ClientEvent{
			Type:    models.ClientError,
			Message: "與房間的連線中斷，請重新連線",
		}, true

	default:
		// 更新快照中已經沒有這位訂閱者：代表他被移出了房間
		if event.Room.FindParticipant(participantID) == nil {
			adminName := event.Room.AdminName
			if admin := event.Room.Admin(); admin != nil {
				adminName = admin.Name
			}
			return models.ClientEvent{
				Type:      models.ClientRemoved,
				AdminName: adminName,
				Message:   "你已被移出房間",
			}, true
		}
		return models.ClientEvent{Type: models.ClientUpdate, Room: event.Room}, false
	}
}

// forwardPump 依序轉發 Change Feed Publisher 的事件給這位參與者。
// 終止事件送出後請求註銷；事件通道被發布端關閉（訂閱者被斷開）時視同錯誤終止。
// send 的關閉只發生在這裡：Hub 註銷客戶端後，events 裡殘留的事件
// 仍會被讀到，寫入方必須還活著才能安全收尾。
func (c *Client) forwardPump() {
	defer close(c.send)
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				// 通道被發布端關閉：可能是正常註銷，也可能是被判定為過慢的訂閱者
				c.requestUnregister()
				return
			}
			clientEvent, terminal := TransformEvent(event, c.ParticipantID)
			select {
			case c.send <- clientEvent:
			case <-c.quit:
				return
			}
			if terminal {
				c.requestUnregister()
				return
			}
		case <-c.quit:
			return
		}
	}
}

// readPump 讀取用戶端訊息。訂閱連線不接受任何應用訊息，
// 這裡只負責 pong 處理與偵測斷線。
func (c *Client) readPump() {
	defer func() {
		c.requestUnregister()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Subscriber disconnected gracefully.")
			}
			break
		}
	}
}

// writePump 接收要送往前端的事件並寫入 WebSocket 連線
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 如果這個 channel 被關閉了（ok == false），就送出 CloseMessage
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			jsonEvent, err := json.Marshal(event)
			if err != nil {
				log.Printf("Error marshalling client event: %v", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, jsonEvent); err != nil {
				log.Printf("Error writing client event: %v", err)
				return
			}

		// 接收定時器以保持連線活躍並檢測客戶端是否仍在線。
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS 處理訂閱連線請求：入場檢查、訂閱變更串流、送出 init 快照後開始轉發
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := utils.NormalizeRoomCode(r.URL.Query().Get("code"))
	participantID := r.URL.Query().Get("participantId")
	if code == "" || participantID == "" {
		http.Error(w, "Room code and participant ID are required for subscription", http.StatusBadRequest)
		return
	}

	// 入場檢查：必須是房間的現任成員
	_, err := h.admission.IsMember(r.Context(), code, participantID)
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, models.ErrForbidden) {
			http.Error(w, "Not a member of this room", http.StatusForbidden)
			return
		}
		log.Printf("Admission check failed for room %s: %v", code, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// 先訂閱再抓初始快照，避免漏掉兩者之間提交的變更
	events, unsubscribe, err := h.feed.Subscribe(r.Context(), code)
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to subscribe to room %s: %v", code, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	snapshot, err := h.admission.IsMember(r.Context(), code, participantID)
	if err != nil {
		unsubscribe()
		if errors.Is(err, models.ErrRoomNotFound) {
			// 房間在訂閱與抓快照之間被結束了
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, models.ErrForbidden) {
			http.Error(w, "Not a member of this room", http.StatusForbidden)
			return
		}
		log.Printf("Failed to fetch init snapshot for room %s: %v", code, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		unsubscribe()
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		hub:           h,
		conn:          conn,
		send:          make(chan models.ClientEvent, 256),
		quit:          make(chan struct{}),
		Code:          code,
		ParticipantID: participantID,
		events:        events,
		unsubscribe:   unsubscribe,
	}

	select {
	case h.register <- client:
	case <-h.done:
		unsubscribe()
		conn.Close()
		return
	}

	// init 事件帶上當下的完整快照
	select {
	case client.send <- models.ClientEvent{Type: models.ClientInit, Room: snapshot}:
	case <-client.quit:
		// 註冊之後隨即被關機註銷，連線直接收掉
		conn.Close()
		return
	}

	go client.writePump()
	go client.forwardPump()
	client.readPump() // readPump 會在連線關閉時自動註銷客戶端
}
