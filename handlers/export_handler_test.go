// backend/handlers/export_handler_test.go
package handlers

import (
	"strings"
	"testing"
	"time"

	"go-brainstorm/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestExportMarkdown(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	room := &models.Room{
		Code:      "ABCDE",
		Name:      "Kickoff",
		AdminName: "Alex",
		Phase:     models.PhasePlanning,
		CreatedAt: base,
		Participants: []models.Participant{
			{ID: "p1", Name: "Alex", Role: models.RoleAdmin},
			{ID: "p2", Name: "Sam", Role: models.RoleParticipant},
		},
		Ideas: []models.Idea{
			{
				ID: "i1", Title: "每週示範會議", AuthorName: "Sam", CreatedAt: base,
				Votes: []string{"p1"},
			},
			{
				ID: "i2", Title: "重構登入流程", AuthorName: "Alex", CreatedAt: base.Add(time.Minute),
				Votes: []string{"p1", "p2"},
				Details: []models.IdeaDetail{
					{Text: "先從後端 API 開始", AuthorName: "Sam"},
				},
				Actions: []models.ActionItem{
					{Text: "盤點現有端點", Completed: true, AssignedToName: "Sam", Tags: []string{"backend"}},
					{Text: "規劃遷移時程", Completed: false},
				},
			},
		},
	}

	markdown := ExportMarkdown(room)

	assert.Contains(t, markdown, "# Kickoff")
	assert.Contains(t, markdown, "- 代碼：ABCDE")
	assert.Contains(t, markdown, "- Alex（主持人）")

	// 提案應依得票數由高至低排列
	first := strings.Index(markdown, "重構登入流程")
	second := strings.Index(markdown, "每週示範會議")
	assert.Greater(t, second, first, "得票較多的提案應排在前面")

	assert.Contains(t, markdown, "（2 票）")
	assert.Contains(t, markdown, "- [x] 盤點現有端點（負責人：Sam） `backend`")
	assert.Contains(t, markdown, "- [ ] 規劃遷移時程")
	assert.Contains(t, markdown, "- 先從後端 API 開始（Sam）")
}

func TestExportMarkdown_Deterministic(t *testing.T) {
	room := &models.Room{Code: "ABCDE", Name: "Kickoff", AdminName: "Alex"}

	assert.Equal(t, ExportMarkdown(room), ExportMarkdown(room), "相同快照的匯出結果應完全一致")
}
