package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phase 定義房間的階段
type Phase string

const (
	PhaseIdeate   Phase = "ideate"   // 腦力激盪階段
	PhaseEnded    Phase = "ended"    // 收斂與投票階段
	PhasePlanning Phase = "planning" // 行動規劃階段
)

// IsValid 檢查階段值是否為三個合法值之一
func (p Phase) IsValid() bool {
	return p == PhaseIdeate || p == PhaseEnded || p == PhasePlanning
}

// Role 定義參與者在房間中的角色
type Role string

const (
	RoleAdmin       Role = "admin"       // 房間建立者（主持人），每個房間固定一位
	RoleParticipant Role = "participant" // 一般參與者
)

// Room 代表一個協作房間，所有巢狀資料都存放在同一份文件內
type Room struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code         string             `bson:"code" json:"code"` // 5 碼房間代碼，建立後不可變更
	Name         string             `bson:"name" json:"name"`
	AdminName    string             `bson:"adminName" json:"adminName"`
	Phase        Phase              `bson:"phase" json:"phase"`
	PhaseEndsAt  *time.Time         `bson:"phaseEndsAt,omitempty" json:"phaseEndsAt,omitempty"`
	Participants []Participant      `bson:"participants" json:"participants"`
	Ideas        []Idea             `bson:"ideas" json:"ideas"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Participant 代表房間中的一位參與者
type Participant struct {
	ID       string    `bson:"id" json:"id"` // 房間內唯一的不透明識別碼
	Name     string    `bson:"name" json:"name"`
	Role     Role      `bson:"role" json:"role"`
	JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
}

// Idea 代表一個腦力激盪的提案
type Idea struct {
	ID          string       `bson:"id" json:"id"`
	Title       string       `bson:"title" json:"title"`
	Description string       `bson:"description" json:"description"`
	AuthorID    string       `bson:"authorId" json:"authorId"`
	AuthorName  string       `bson:"authorName" json:"authorName"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
	Votes       []string     `bson:"votes" json:"votes"` // 投票者的參與者 ID 集合，每人至多一票
	Details     []IdeaDetail `bson:"details" json:"details"`
	Actions     []ActionItem `bson:"actions" json:"actions"`
}

// IdeaDetail 代表對提案的補充說明，只能附加、不能修改或刪除
type IdeaDetail struct {
	ID         string    `bson:"id" json:"id"`
	Text       string    `bson:"text" json:"text"`
	AuthorID   string    `bson:"authorId" json:"authorId"`
	AuthorName string    `bson:"authorName" json:"authorName"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// ActionItem 代表提案底下的行動項目
type ActionItem struct {
	ID             string    `bson:"id" json:"id"`
	Text           string    `bson:"text" json:"text"`
	Completed      bool      `bson:"completed" json:"completed"`
	AssignedTo     string    `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AssignedToName string    `bson:"assignedToName,omitempty" json:"assignedToName,omitempty"`
	Tags           []string  `bson:"tags" json:"tags"` // 至多 3 個短標籤
	CreatedBy      string    `bson:"createdBy" json:"createdBy"`
	CreatedByName  string    `bson:"createdByName" json:"createdByName"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// Admin 回傳房間目前的管理者；房間建立時必定存在一位
func (r *Room) Admin() *Participant {
	for i := range r.Participants {
		if r.Participants[i].Role == RoleAdmin {
			return &r.Participants[i]
		}
	}
	return nil
}

// FindParticipant 依 ID 在名單中尋找參與者
func (r *Room) FindParticipant(participantID string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].ID == participantID {
			return &r.Participants[i]
		}
	}
	return nil
}

// FindIdea 依 ID 尋找提案
func (r *Room) FindIdea(ideaID string) *Idea {
	for i := range r.Ideas {
		if r.Ideas[i].ID == ideaID {
			return &r.Ideas[i]
		}
	}
	return nil
}

// IdeaCountByAuthor 計算某位作者在房間內已提交的提案數（配額檢查用）
func (r *Room) IdeaCountByAuthor(participantID string) int {
	count := 0
	for i := range r.Ideas {
		if r.Ideas[i].AuthorID == participantID {
			count++
		}
	}
	return count
}

// MaxIdeasPerParticipant 一般參與者在單一房間內的提案上限（管理者不受限）
const MaxIdeasPerParticipant = 3

// MaxActionTags 單一行動項目可攜帶的標籤數量上限
const MaxActionTags = 3
