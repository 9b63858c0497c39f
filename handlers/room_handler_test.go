// backend/handlers/room_handler_test.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-brainstorm/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{models.ErrRoomNotFound, http.StatusNotFound},
		{models.ErrIdeaNotFound, http.StatusNotFound},
		{models.ErrActionNotFound, http.StatusNotFound},
		// 找不到的資源一律 404，包含指派對象不在名單上的情況
		{models.ErrParticipantNotFound, http.StatusNotFound},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrPhaseLocked, http.StatusConflict},
		{models.ErrPhaseNotVotable, http.StatusConflict},
		{models.ErrQuotaExceeded, http.StatusConflict},
		{models.ErrCodeGenerationExhausted, http.StatusServiceUnavailable},
		{models.ErrInvalidRequest, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, statusForError(tc.err),
			"錯誤 %v 的狀態碼對應不正確", tc.err)
	}

	// 包裝過的類型化失敗也要能被對應到
	wrapped := fmt.Errorf("加入房間失敗: %w", models.ErrRoomNotFound)
	assert.Equal(t, http.StatusNotFound, statusForError(wrapped))
}
