package models

import "errors"

// 所有可回傳給呼叫端的類型化失敗。
// 這些錯誤在 Mutation Gateway 邊界被攔截並轉成對應的 HTTP 狀態碼，
// 不會讓程序崩潰；核心不做任何自動重試，由呼叫端決定是否重送。
var (
	ErrRoomNotFound            = errors.New("room not found")
	ErrForbidden               = errors.New("forbidden")
	ErrPhaseLocked             = errors.New("phase locked")      // 房間已進入 ended 階段，禁止新增提案
	ErrPhaseNotVotable         = errors.New("phase not votable") // 僅 ended / planning 階段開放投票
	ErrQuotaExceeded           = errors.New("idea quota exceeded")
	ErrIdeaNotFound            = errors.New("idea not found")
	ErrActionNotFound          = errors.New("action item not found")
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrCodeGenerationExhausted = errors.New("room code generation exhausted") // 暫時性失敗，可安全重試
	ErrFeedBroken              = errors.New("change feed broken")
	ErrInvalidRequest          = errors.New("invalid request") // 請求欄位驗證失敗
)

// ErrorResponse 結構體用於返回 JSON 格式的錯誤訊息
type ErrorResponse struct {
	Message string `json:"message"`
}
