package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-brainstorm/backend/models"
	"go-brainstorm/backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// maxCodeAttempts 代碼配發的重試上限，全部碰撞時回傳 ErrCodeGenerationExhausted
	maxCodeAttempts = 5

	// maxToggleAttempts 切換類操作（投票、完成狀態）在高競爭下的重試上限
	maxToggleAttempts = 3
)

// RoomStore 封裝房間集合的所有變更操作。
// 每個變更都是「單一帶條件的原子更新」：不變量直接寫進 filter，
// 永遠不做讀取、修改、整份覆寫，因此兩個並發的變更不會互相蓋掉。
type RoomStore struct {
	collection *mongo.Collection
}

// NewRoomStore 建立 RoomStore 實例
func NewRoomStore(collection *mongo.Collection) *RoomStore {
	return &RoomStore{collection: collection}
}

// Collection 回傳底層集合，供 Change Feed Publisher 開啟變更串流
func (s *RoomStore) Collection() *mongo.Collection {
	return s.collection
}

// afterUpdate 回傳「更新後取回新文件」的共用選項
func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// nameMatchFilter 建立不分大小寫的名稱完全比對條件
func nameMatchFilter(name string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
}

// CreateRoom 建立新房間並配發唯一代碼。
// 代碼的唯一性由唯一索引保證；碰撞時重新產生，最多 maxCodeAttempts 次。
func (s *RoomStore) CreateRoom(ctx context.Context, adminName, roomName string) (*models.Room, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := utils.GenerateRoomCode()
		if err != nil {
			return nil, err
		}

		now := time.Now()
		room := models.Room{
			ID:        primitive.NewObjectID(),
			Code:      code,
			Name:      roomName,
			AdminName: adminName,
			Phase:     models.PhaseIdeate,
			Participants: []models.Participant{
				{
					ID:       primitive.NewObjectID().Hex(),
					Name:     adminName,
					Role:     models.RoleAdmin,
					JoinedAt: now,
				},
			},
			Ideas:     []models.Idea{},
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err = s.collection.InsertOne(ctx, room)
		if err == nil {
			return &room, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			// 代碼碰撞，換一組再試
			continue
		}
		return nil, fmt.Errorf("failed to insert room: %w", err)
	}
	return nil, models.ErrCodeGenerationExhausted
}

// GetRoom 依代碼取得房間快照
func (s *RoomStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := s.collection.FindOne(ctx, bson.M{"code": code}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room %s: %w", code, err)
	}
	return &room, nil
}

// JoinRoom 加入房間。若已有參與者名稱不分大小寫相同，
// 直接回傳該身分而不重複插入（重連是冪等的）。
func (s *RoomStore) JoinRoom(ctx context.Context, code, name string) (*models.Room, *models.Participant, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		room, err := s.GetRoom(ctx, code)
		if err != nil {
			return nil, nil, err
		}

		// 名稱比對命中就重用既有身分
		for i := range room.Participants {
			if strings.EqualFold(room.Participants[i].Name, name) {
				return room, &room.Participants[i], nil
			}
		}

		participant := models.Participant{
			ID:       primitive.NewObjectID().Hex(),
			Name:     name,
			Role:     models.RoleParticipant,
			JoinedAt: time.Now(),
		}

		// filter 再次排除同名者，避免兩個同名請求並發時重複插入
		filter := bson.M{
			"code":         code,
			"participants": bson.M{"$not": bson.M{"$elemMatch": bson.M{"name": nameMatchFilter(name)}}},
		}
		update := bson.M{
			"$push": bson.M{"participants": participant},
			"$set":  bson.M{"updatedAt": time.Now()},
		}

		var updated models.Room
		err = s.collection.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&updated)
		if err == nil {
			return &updated, &participant, nil
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			// 房間剛被刪除，或同名者剛好先加入了；重讀一次再判斷
			continue
		}
		return nil, nil, fmt.Errorf("failed to join room %s: %w", code, err)
	}
	return nil, nil, models.ErrRoomNotFound
}

// EndRoom 結束房間（硬刪除，連同所有巢狀資料）。
// 只有管理者可以執行；刪除會以 delete 事件浮現在變更串流上，而非 update。
func (s *RoomStore) EndRoom(ctx context.Context, code, requesterID string) (*models.Room, error) {
	filter := bson.M{
		"code":         code,
		"participants": bson.M{"$elemMatch": bson.M{"id": requesterID, "role": models.RoleAdmin}},
	}

	var deleted models.Room
	err := s.collection.FindOneAndDelete(ctx, filter).Decode(&deleted)
	if err == nil {
		return &deleted, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to end room %s: %w", code, err)
	}

	return nil, s.classify(ctx, code, func(room *models.Room) error {
		return models.ErrForbidden
	})
}

// RemoveParticipant 將參與者移出房間。
// 只移除名單條目，不回溯修改任何過往提案、補充或行動項目上的作者欄位。
func (s *RoomStore) RemoveParticipant(ctx context.Context, code, requesterID, targetID string) (*models.Room, error) {
	if targetID == requesterID {
		// 管理者不能把自己移出房間（結束房間請用 EndRoom）
		return nil, models.ErrForbidden
	}

	filter := bson.M{"$and": bson.A{
		bson.M{"code": code},
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": requesterID, "role": models.RoleAdmin}}},
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": targetID}}},
	}}
	update := bson.M{
		"$pull": bson.M{"participants": bson.M{"id": targetID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	var updated models.Room
	err := s.collection.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to remove participant from room %s: %w", code, err)
	}

	return nil, s.classify(ctx, code, func(room *models.Room) error {
		admin := room.Admin()
		if admin == nil || admin.ID != requesterID {
			return models.ErrForbidden
		}
		if room.FindParticipant(targetID) == nil {
			return models.ErrParticipantNotFound
		}
		return models.ErrForbidden
	})
}

// SetPhase 切換房間階段。階段值必須合法，但不強制 ideate→ended→planning 的順序；
// phaseEndsAt 可自由設定或清除。
func (s *RoomStore) SetPhase(ctx context.Context, code, requesterID string, phase models.Phase, phaseEndsAt *time.Time) (*models.Room, error) {
	if !phase.IsValid() {
		return nil, fmt.Errorf("invalid phase %q", phase)
	}

	filter := bson.M{
		"code":         code,
		"participants": bson.M{"$elemMatch": bson.M{"id": requesterID, "role": models.RoleAdmin}},
	}

	set := bson.M{"phase": phase, "updatedAt": time.Now()}
	update := bson.M{"$set": set}
	if phaseEndsAt != nil {
		set["phaseEndsAt"] = *phaseEndsAt
	} else {
		update["$unset"] = bson.M{"phaseEndsAt": ""}
	}

	var updated models.Room
	err := s.collection.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to set phase for room %s: %w", code, err)
	}

	return nil, s.classify(ctx, code, func(room *models.Room) error {
		return models.ErrForbidden
	})
}

// AddIdea 新增提案。ended 階段禁止；一般參與者最多 3 個提案，管理者不受限。
// 配額檢查以 $expr 寫進 filter，與插入同屬一次原子更新，交錯提交也不會超額。
func (s *RoomStore) AddIdea(ctx context.Context, code, participantID, title, description string) (*models.Room, *models.Idea, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	author := room.FindParticipant(participantID)
	if author == nil {
		return nil, nil, models.ErrForbidden
	}

	idea := models.Idea{
		ID:          primitive.NewObjectID().Hex(),
		Title:       title,
		Description: description,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		CreatedAt:   time.Now(),
		Votes:       []string{},
		Details:     []models.IdeaDetail{},
		Actions:     []models.ActionItem{},
	}

	quotaFilter := bson.M{"$or": bson.A{
		// 管理者不受配額限制
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": participantID, "role": models.RoleAdmin}}},
		bson.M{"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$ideas",
				"as":    "idea",
				"cond":  bson.M{"$eq": bson.A{"$$idea.authorId", participantID}},
			}}},
			models.MaxIdeasPerParticipant,
		}}},
	}}

	filter := bson.M{"$and": bson.A{
		bson.M{"code": code},
		bson.M{"phase": bson.M{"$ne": models.PhaseEnded}},
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": participantID}}},
		quotaFilter,
	}}
	update := bson.M{
		"$push": bson.M{"ideas": idea},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	var updated models.Room
	err = s.collection.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&updated)
	if err == nil {
		return &updated, &idea, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("failed to add idea to room %s: %w", code, err)
	}

	return nil, nil, s.classify(ctx, code, func(room *models.Room) error {
		p := room.FindParticipant(participantID)
		if p == nil {
			return models.ErrForbidden
		}
		if room.Phase == models.PhaseEnded {
			return models.ErrPhaseLocked
		}
		if p.Role != models.RoleAdmin && room.IdeaCountByAuthor(participantID) >= models.MaxIdeasPerParticipant {
			return models.ErrQuotaExceeded
		}
		return models.ErrForbidden
	})
}

// ToggleVote 切換投票狀態：已投就收回，未投就投下。
// 兩個方向各是一次帶條件的原子集合操作（$pull / $addToSet），
// 不同參與者對同一提案並發切換時互不干擾，重試也安全（自反）。
func (s *RoomStore) ToggleVote(ctx context.Context, code, participantID, ideaID string) (*models.Room, bool, error) {
	base := bson.A{
		bson.M{"code": code},
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": participantID}}},
		bson.M{"phase": bson.M{"$in": bson.A{models.PhaseEnded, models.PhasePlanning}}},
	}
	arrayOpts := afterUpdate().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"i.id": ideaID}},
	})

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		// 先嘗試收回：要求該提案的票集合目前包含此參與者
		pullFilter := andWith(base,
			bson.M{"ideas": bson.M{"$elemMatch": bson.M{"id": ideaID, "votes": participantID}}})
		pullUpdate := bson.M{
			"$pull": bson.M{"ideas.$[i].votes": participantID},
			"$set":  bson.M{"updatedAt": time.Now()},
		}
		var updated models.Room
		err := s.collection.FindOneAndUpdate(ctx, pullFilter, pullUpdate, arrayOpts).Decode(&updated)
		if err == nil {
			return &updated, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, fmt.Errorf("failed to retract vote in room %s: %w", code, err)
		}

		// 再嘗試投下：要求該票目前不存在
		addFilter := andWith(base,
			bson.M{"ideas": bson.M{"$elemMatch": bson.M{"id": ideaID, "votes": bson.M{"$ne": participantID}}}})
		addUpdate := bson.M{
			"$addToSet": bson.M{"ideas.$[i].votes": participantID},
			"$set":      bson.M{"updatedAt": time.Now()},
		}
		err = s.collection.FindOneAndUpdate(ctx, addFilter, addUpdate, arrayOpts).Decode(&updated)
		if err == nil {
			return &updated, true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, fmt.Errorf("failed to cast vote in room %s: %w", code, err)
		}

		// 兩個方向都沒命中：可能是前置條件不滿足，也可能是同一人並發切換造成的競爭
		classifyErr := s.classify(ctx, code, func(room *models.Room) error {
			if room.FindParticipant(participantID) == nil {
				return models.ErrForbidden
			}
			if room.Phase != models.PhaseEnded && room.Phase != models.PhasePlanning {
				return models.ErrPhaseNotVotable
			}
			if room.FindIdea(ideaID) == nil {
				return models.ErrIdeaNotFound
			}
			return nil // 前置條件都滿足，是競爭，重試
		})
		if classifyErr != nil {
			return nil, false, classifyErr
		}
	}
	return nil, false, fmt.Errorf("vote toggle contention in room %s", code)
}

// AddDetail 為提案附加補充說明。沒有階段限制；補充只能附加，不能編輯或刪除。
func (s *RoomStore) AddDetail(ctx context.Context, code, participantID, ideaID, text string) (*models.Room, *models.IdeaDetail, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	author := room.FindParticipant(participantID)
	if author == nil {
		return nil, nil, models.ErrForbidden
	}

	detail := models.IdeaDetail{
		ID:         primitive.NewObjectID().Hex(),
		Text:       text,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		CreatedAt:  time.Now(),
	}

	filter := bson.M{"$and": bson.A{
		bson.M{"code": code},
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": participantID}}},
		bson.M{"ideas": bson.M{"$elemMatch": bson.M{"id": ideaID}}},
	}}
	update := bson.M{
		"$push": bson.M{"ideas.$[i].details": detail},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := afterUpdate().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"i.id": ideaID}},
	})

	var updated models.Room
	err = s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, &detail, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("failed to add detail in room %s: %w", code, err)
	}

	return nil, nil, s.classify(ctx, code, func(room *models.Room) error {
		if room.FindParticipant(participantID) == nil {
			return models.ErrForbidden
		}
		if room.FindIdea(ideaID) == nil {
			return models.ErrIdeaNotFound
		}
		return models.ErrForbidden
	})
}

// AddAction 為提案新增行動項目。只有管理者可以建立；
// assignedToName 以當下名單解析，之後移除被指派者也不會回溯改寫。
func (s *RoomStore) AddAction(ctx context.Context, code, participantID, ideaID, text, assignedTo string, tags []string) (*models.Room, *models.ActionItem, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	creator := room.FindParticipant(participantID)
	if creator == nil || creator.Role != models.RoleAdmin {
		return nil, nil, models.ErrForbidden
	}

	assignedToName := ""
	if assignedTo != "" {
		assignee := room.FindParticipant(assignedTo)
		if assignee == nil {
			return nil, nil, models.ErrParticipantNotFound
		}
		assignedToName = assignee.Name
	}
	if tags == nil {
		tags = []string{}
	}

	action := models.ActionItem{
		ID:             primitive.NewObjectID().Hex(),
		Text:           text,
		Completed:      false,
		AssignedTo:     assignedTo,
		AssignedToName: assignedToName,
		Tags:           tags,
		CreatedBy:      creator.ID,
		CreatedByName:  creator.Name,
		CreatedAt:      time.Now(),
	}

	filter := bson.M{"$and": bson.A{
		bson.M{"code": code},
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": participantID, "role": models.RoleAdmin}}},
		bson.M{"ideas": bson.M{"$elemMatch": bson.M{"id": ideaID}}},
	}}
	update := bson.M{
		"$push": bson.M{"ideas.$[i].actions": action},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := afterUpdate().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"i.id": ideaID}},
	})

	var updated models.Room
	err = s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, &action, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("failed to add action in room %s: %w", code, err)
	}

	return nil, nil, s.classify(ctx, code, func(room *models.Room) error {
		p := room.FindParticipant(participantID)
		if p == nil || p.Role != models.RoleAdmin {
			return models.ErrForbidden
		}
		if room.FindIdea(ideaID) == nil {
			return models.ErrIdeaNotFound
		}
		return models.ErrForbidden
	})
}

// ToggleActionCompletion 翻轉行動項目的完成狀態，任何現任成員都可以操作。
// 兩個方向各是一次以目前值為條件的原子更新（compare-and-set）。
func (s *RoomStore) ToggleActionCompletion(ctx context.Context, code, participantID, ideaID, actionID string) (*models.Room, bool, error) {
	base := bson.A{
		bson.M{"code": code},
		bson.M{"participants": bson.M{"$elemMatch": bson.M{"id": participantID}}},
	}

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		for _, target := range []bool{true, false} {
			// target 是要寫入的新值，條件要求目前為相反值
			filter := andWith(base,
				bson.M{"ideas": bson.M{"$elemMatch": bson.M{
					"id":      ideaID,
					"actions": bson.M{"$elemMatch": bson.M{"id": actionID, "completed": !target}},
				}}})
			update := bson.M{"$set": bson.M{
				"ideas.$[i].actions.$[a].completed": target,
				"updatedAt":                         time.Now(),
			}}
			opts := afterUpdate().SetArrayFilters(options.ArrayFilters{
				Filters: []interface{}{
					bson.M{"i.id": ideaID},
					bson.M{"a.id": actionID, "a.completed": !target},
				},
			})

			var updated models.Room
			err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
			if err == nil {
				return &updated, target, nil
			}
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, false, fmt.Errorf("failed to toggle action in room %s: %w", code, err)
			}
		}

		classifyErr := s.classify(ctx, code, func(room *models.Room) error {
			if room.FindParticipant(participantID) == nil {
				return models.ErrForbidden
			}
			idea := room.FindIdea(ideaID)
			if idea == nil {
				return models.ErrIdeaNotFound
			}
			for i := range idea.Actions {
				if idea.Actions[i].ID == actionID {
					return nil // 項目存在，是競爭，重試
				}
			}
			return models.ErrActionNotFound
		})
		if classifyErr != nil {
			return nil, false, classifyErr
		}
	}
	return nil, false, fmt.Errorf("action toggle contention in room %s", code)
}

// andWith 組合共用條件與一個額外條件，回傳 $and filter
func andWith(base bson.A, extra bson.M) bson.M {
	conds := make(bson.A, 0, len(base)+1)
	conds = append(conds, base...)
	conds = append(conds, extra)
	return bson.M{"$and": conds}
}

// classify 在原子更新的 filter 沒有命中時，重讀一次房間並判斷確切的失敗原因
func (s *RoomStore) classify(ctx context.Context, code string, check func(*models.Room) error) error {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return err // ErrRoomNotFound
	}
	return check(room)
}

