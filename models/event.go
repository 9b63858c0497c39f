package models

// FeedEventType 定義 Change Feed Publisher 發出的事件類型
type FeedEventType string

const (
	FeedSnapshot FeedEventType = "snapshot" // 房間有已提交的變更，攜帶完整快照
	FeedDeleted  FeedEventType = "deleted"  // 房間已被管理者結束（硬刪除）
	FeedBroken   FeedEventType = "broken"   // 觀察通道重建失敗，訂閱者應收到終止訊號
)

// FeedEvent 是 Change Feed Publisher 對單一房間發出的有序事件。
// 同一房間的事件順序與底層變更提交順序一致；不同房間之間不保證順序。
type FeedEvent struct {
	Type      FeedEventType
	Room      *Room  // Type == FeedSnapshot 時為最新快照
	AdminName string // Type == FeedDeleted 時為最後已知的管理者名稱
}

// ClientEventType 定義推送給前端客戶端的具名事件類型
type ClientEventType string

const (
	ClientInit    ClientEventType = "init"    // 連線建立時的初始快照
	ClientUpdate  ClientEventType = "update"  // 房間狀態更新
	ClientClosed  ClientEventType = "closed"  // 房間已被管理者結束
	ClientRemoved ClientEventType = "removed" // 訂閱者本人已被移出房間
	ClientError   ClientEventType = "error"   // 變更通道中斷，連線即將關閉
)

// ClientEvent 是 Subscriber Fan-out 經過參與者視角轉換後送出的事件
type ClientEvent struct {
	Type      ClientEventType `json:"type"`
	Room      *Room           `json:"room,omitempty"`
	AdminName string          `json:"adminName,omitempty"`
	Message   string          `json:"message,omitempty"`
}
