package feed

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go-brainstorm/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// maxReconnectAttempts 觀察通道連續重建失敗的上限，超過即對訂閱者發出 broken
	maxReconnectAttempts = 5

	// reconnectBackoff 每次重建之間的等待時間
	reconnectBackoff = 2 * time.Second

	// subscriberBuffer 每個訂閱者通道的緩衝大小
	subscriberBuffer = 16
)

// Publisher 觀察房間集合每一筆已提交的變更（含刪除），
// 對每個房間維護一個帶引用計數的觀察者 goroutine，
// 並以完整快照或刪除訊號的形式發給該房間的所有訂閱者。
type Publisher struct {
	collection *mongo.Collection

	mu       sync.Mutex
	watchers map[string]*roomWatcher
	closed   bool
}

// NewPublisher 建立 Publisher 實例
func NewPublisher(collection *mongo.Collection) *Publisher {
	return &Publisher{
		collection: collection,
		watchers:   make(map[string]*roomWatcher),
	}
}

// Subscribe 訂閱指定房間的事件串流。
// 回傳事件通道與取消訂閱函數；房間不存在時回傳 ErrRoomNotFound。
// 同一房間的最後一個訂閱者離開時，底層的變更串流會被釋放。
func (p *Publisher) Subscribe(ctx context.Context, code string) (<-chan models.FeedEvent, func(), error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, nil, models.ErrFeedBroken
		}
		w, ok := p.watchers[code]
		p.mu.Unlock()

		if !ok {
			// 第一個訂閱者：確認房間存在並取得 _id，供刪除事件的比對使用。
			// 查詢在鎖外進行，單一房間的慢查詢不會卡住其他房間的訂閱。
			var room models.Room
			err := p.collection.FindOne(ctx, bson.M{"code": code}).Decode(&room)
			if err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil, nil, models.ErrRoomNotFound
				}
				return nil, nil, err
			}

			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				return nil, nil, models.ErrFeedBroken
			}
			// 查詢期間可能有別的訂閱者先建好了觀察者
			w, ok = p.watchers[code]
			if !ok {
				w = newRoomWatcher(p, code, room.ID, adminNameOf(&room))
				p.watchers[code] = w
				go w.run()
			}
			p.mu.Unlock()
		}

		ch, ok := w.addSubscriber()
		if ok {
			unsubscribe := func() { w.removeSubscriber(ch) }
			return ch, unsubscribe, nil
		}
		// 觀察者剛好在終止中，移掉殘留的條目後重來
		p.removeWatcher(code, w)
	}
}

// Close 關閉 Publisher，終止所有房間的觀察者並關閉所有訂閱通道
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	watchers := make([]*roomWatcher, 0, len(p.watchers))
	for _, w := range p.watchers {
		watchers = append(watchers, w)
	}
	p.watchers = make(map[string]*roomWatcher)
	p.mu.Unlock()

	for _, w := range watchers {
		w.shutdown()
	}
}

// removeWatcher 把指定觀察者從目錄移除（僅當目錄中仍是同一個實例時）
func (p *Publisher) removeWatcher(code string, w *roomWatcher) {
	p.mu.Lock()
	if current, ok := p.watchers[code]; ok && current == w {
		delete(p.watchers, code)
	}
	p.mu.Unlock()
}

// roomWatcher 對單一房間維護一條變更串流，並把事件依提交順序廣播給訂閱者
type roomWatcher struct {
	publisher *Publisher
	code      string
	roomID    primitive.ObjectID

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	subscribers map[chan models.FeedEvent]struct{}
	closed      bool

	// lastAdminName 最後一次快照中的管理者名稱，刪除事件發生時用來通知訂閱者
	lastAdminName string
}

func newRoomWatcher(p *Publisher, code string, roomID primitive.ObjectID, adminName string) *roomWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &roomWatcher{
		publisher:     p,
		code:          code,
		roomID:        roomID,
		ctx:           ctx,
		cancel:        cancel,
		subscribers:   make(map[chan models.FeedEvent]struct{}),
		lastAdminName: adminName,
	}
}

// changeEvent 變更串流事件中本觀察者關心的欄位
type changeEvent struct {
	OperationType string       `bson:"operationType"`
	FullDocument  *models.Room `bson:"fullDocument"`
}

// run 是觀察者的主迴圈：開啟變更串流、轉發事件、在串流中斷時重建。
// 重建成功後不回放缺口，而是重送一次當下的權威快照。
func (w *roomWatcher) run() {
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
		bson.M{"fullDocument.code": w.code},
		bson.M{"$and": bson.A{
			bson.M{"operationType": "delete"},
			bson.M{"documentKey._id": w.roomID},
		}},
	}}}}}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	failures := 0
	resumed := false

	for {
		stream, err := w.publisher.collection.Watch(w.ctx, pipeline, opts)
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			failures++
			log.Printf("Failed to open change stream for room %s (attempt %d): %v", w.code, failures, err)
			if failures >= maxReconnectAttempts {
				// 永久失敗：發出終止訊號，不讓訂閱者無聲卡住
				w.terminate(models.FeedEvent{Type: models.FeedBroken})
				return
			}
			select {
			case <-time.After(reconnectBackoff):
			case <-w.ctx.Done():
				return
			}
			continue
		}
		failures = 0

		if resumed {
			// 串流中斷期間可能漏掉事件：重送一次權威快照補上
			if !w.resendSnapshot() {
				stream.Close(context.Background())
				return
			}
		}
		resumed = true

		for stream.Next(w.ctx) {
			var event changeEvent
			if err := stream.Decode(&event); err != nil {
				log.Printf("Failed to decode change event for room %s: %v", w.code, err)
				continue
			}
			if event.OperationType == "delete" {
				w.terminate(models.FeedEvent{Type: models.FeedDeleted, AdminName: w.lastAdminName})
				stream.Close(context.Background())
				return
			}
			if event.FullDocument == nil {
				continue
			}
			w.rememberAdmin(event.FullDocument)
			w.broadcast(models.FeedEvent{Type: models.FeedSnapshot, Room: event.FullDocument})
		}

		streamErr := stream.Err()
		stream.Close(context.Background())
		if w.ctx.Err() != nil {
			return
		}
		log.Printf("Change stream for room %s interrupted: %v, re-establishing...", w.code, streamErr)
	}
}

// resendSnapshot 重建串流後重抓快照並廣播；房間已消失則改發刪除訊號。
// 回傳 false 表示觀察者已經終止。
func (w *roomWatcher) resendSnapshot() bool {
	ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
	defer cancel()

	var room models.Room
	err := w.publisher.collection.FindOne(ctx, bson.M{"code": w.code}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			w.terminate(models.FeedEvent{Type: models.FeedDeleted, AdminName: w.lastAdminName})
			return false
		}
		log.Printf("Failed to refetch snapshot for room %s: %v", w.code, err)
		return true // 快照拿不到就等下一個事件，串流本身還活著
	}
	w.rememberAdmin(&room)
	w.broadcast(models.FeedEvent{Type: models.FeedSnapshot, Room: &room})
	return true
}

func (w *roomWatcher) rememberAdmin(room *models.Room) {
	if name := adminNameOf(room); name != "" {
		w.mu.Lock()
		w.lastAdminName = name
		w.mu.Unlock()
	}
}

// addSubscriber 加入一個訂閱通道；觀察者已終止時回傳 false
func (w *roomWatcher) addSubscriber() (chan models.FeedEvent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, false
	}
	ch := make(chan models.FeedEvent, subscriberBuffer)
	w.subscribers[ch] = struct{}{}
	return ch, true
}

// removeSubscriber 移除訂閱通道；最後一個訂閱者離開時釋放整個觀察者
func (w *roomWatcher) removeSubscriber(ch chan models.FeedEvent) {
	w.mu.Lock()
	if _, ok := w.subscribers[ch]; !ok {
		w.mu.Unlock()
		return
	}
	delete(w.subscribers, ch)
	close(ch)
	empty := len(w.subscribers) == 0 && !w.closed
	if empty {
		w.closed = true
	}
	w.mu.Unlock()

	if empty {
		w.cancel()
		w.publisher.removeWatcher(w.code, w)
	}
}

// broadcast 依提交順序把事件送給所有訂閱者。
// 緩衝塞滿的訂閱者會被直接斷開（關閉其通道），避免拖垮整個房間的串流。
func (w *roomWatcher) broadcast(event models.FeedEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for ch := range w.subscribers {
		select {
		case ch <- event:
		default:
			close(ch)
			delete(w.subscribers, ch)
			log.Printf("Subscriber channel is full, dropped a subscriber of room %s", w.code)
		}
	}
}

// terminate 發出終止事件（deleted 或 broken）後關閉所有訂閱通道並註銷觀察者
func (w *roomWatcher) terminate(event models.FeedEvent) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for ch := range w.subscribers {
		select {
		case ch <- event:
		default:
		}
		close(ch)
		delete(w.subscribers, ch)
	}
	w.mu.Unlock()

	w.cancel()
	w.publisher.removeWatcher(w.code, w)
}

// shutdown 供 Publisher.Close 使用：以 broken 訊號終止
func (w *roomWatcher) shutdown() {
	w.terminate(models.FeedEvent{Type: models.FeedBroken})
}

func adminNameOf(room *models.Room) string {
	if admin := room.Admin(); admin != nil {
		return admin.Name
	}
	return room.AdminName
}
