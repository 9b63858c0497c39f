package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"go-brainstorm/backend/models"
	"go-brainstorm/backend/services"

	"github.com/gorilla/mux"
)

// sendJSONError 統一發送 JSON 格式錯誤響應
func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	var errorResponse models.ErrorResponse
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	errorResponse.Message = message
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("Failed to write error response: %v", err)
	}
}

// statusForError 把 Mutation Gateway 的類型化失敗對應到 HTTP 狀態碼
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrRoomNotFound),
		errors.Is(err, models.ErrIdeaNotFound),
		errors.Is(err, models.ErrActionNotFound),
		errors.Is(err, models.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrPhaseLocked),
		errors.Is(err, models.ErrPhaseNotVotable),
		errors.Is(err, models.ErrQuotaExceeded):
		return http.StatusConflict
	case errors.Is(err, models.ErrCodeGenerationExhausted):
		// 暫時性失敗，呼叫端可安全重試
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sendFailure 記錄並回傳類型化失敗
func sendFailure(w http.ResponseWriter, operation string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s: %v", operation, err)
		sendJSONError(w, "Internal server error", status)
		return
	}
	sendJSONError(w, err.Error(), status)
}

// sendJSON 回傳成功結果
func sendJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// RoomHandler 是 HTTP 傳輸層：解析請求、呼叫 Mutation Gateway、轉換結果
type RoomHandler struct {
	service *services.RoomService
}

// NewRoomHandler 建立 RoomHandler 實例
func NewRoomHandler(service *services.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// CreateRoom 處理建立房間的請求
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req services.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.CreateRoom(r.Context(), req)
	if err != nil {
		sendFailure(w, "create room", err)
		return
	}
	sendJSON(w, http.StatusCreated, result)
}

// GetRoom 處理讀取房間快照的請求
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.service.GetRoom(r.Context(), code)
	if err != nil {
		sendFailure(w, "get room", err)
		return
	}
	sendJSON(w, http.StatusOK, room)
}

// JoinRoom 處理加入房間的請求
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req services.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.JoinRoom(r.Context(), code, req)
	if err != nil {
		sendFailure(w, "join room", err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// EndRoom 處理結束房間的請求（僅管理者）
func (h *RoomHandler) EndRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	req := services.EndRoomRequest{RequesterID: r.URL.Query().Get("requesterId")}

	result, err := h.service.EndRoom(r.Context(), code, req)
	if err != nil {
		sendFailure(w, "end room", err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// RemoveParticipant 處理移除參與者的請求（僅管理者）
func (h *RoomHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]
	targetID := vars["participantId"]
	requesterID := r.URL.Query().Get("requesterId")

	result, err := h.service.RemoveParticipant(r.Context(), code, requesterID, targetID)
	if err != nil {
		sendFailure(w, "remove participant", err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// SetPhase 處理切換階段的請求（僅管理者）
func (h *RoomHandler) SetPhase(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req services.SetPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.SetPhase(r.Context(), code, req)
	if err != nil {
		sendFailure(w, "set phase", err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// AddIdea 處理新增提案的請求
func (h *RoomHandler) AddIdea(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req services.AddIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.AddIdea(r.Context(), code, req)
	if err != nil {
		sendFailure(w, "add idea", err)
		return
	}
	sendJSON(w, http.StatusCreated, result)
}

// ToggleVote 處理切換投票的請求
func (h *RoomHandler) ToggleVote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req services.ToggleVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.ToggleVote(r.Context(), vars["code"], vars["ideaId"], req)
	if err != nil {
		sendFailure(w, "toggle vote", err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// AddDetail 處理附加補充說明的請求
func (h *RoomHandler) AddDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req services.AddDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.AddDetail(r.Context(), vars["code"], vars["ideaId"], req)
	if err != nil {
		sendFailure(w, "add detail", err)
		return
	}
	sendJSON(w, http.StatusCreated, result)
}

// AddAction 處理新增行動項目的請求（僅管理者）
func (h *RoomHandler) AddAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req services.AddActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.AddAction(r.Context(), vars["code"], vars["ideaId"], req)
	if err != nil {
		sendFailure(w, "add action", err)
		return
	}
	sendJSON(w, http.StatusCreated, result)
}

// ToggleAction 處理切換行動項目完成狀態的請求
func (h *RoomHandler) ToggleAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req services.ToggleActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.ToggleActionCompletion(r.Context(), vars["code"], vars["ideaId"], vars["actionId"], req)
	if err != nil {
		sendFailure(w, "toggle action", err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}
