package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go-brainstorm/backend/models"

	"github.com/gorilla/mux"
)

// ExportMarkdown 把房間快照渲染成 Markdown 文件。
// 提案依得票數由高至低排列，同票數依建立時間排列。
func ExportMarkdown(room *models.Room) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", room.Name)
	fmt.Fprintf(&b, "- 代碼：%s\n", room.Code)
	fmt.Fprintf(&b, "- 階段：%s\n", room.Phase)
	fmt.Fprintf(&b, "- 主持人：%s\n", room.AdminName)
	fmt.Fprintf(&b, "- 建立時間：%s\n\n", room.CreatedAt.Format("2006-01-02 15:04"))

	b.WriteString("## 參與者\n\n")
	for _, p := range room.Participants {
		if p.Role == models.RoleAdmin {
			fmt.Fprintf(&b, "- %s（主持人）\n", p.Name)
		} else {
			fmt.Fprintf(&b, "- %s\n", p.Name)
		}
	}

	ideas := make([]models.Idea, len(room.Ideas))
	copy(ideas, room.Ideas)
	sort.SliceStable(ideas, func(i, j int) bool {
		if len(ideas[i].Votes) != len(ideas[j].Votes) {
			return len(ideas[i].Votes) > len(ideas[j].Votes)
		}
		return ideas[i].CreatedAt.Before(ideas[j].CreatedAt)
	})

	b.WriteString("\n## 提案\n")
	for _, idea := range ideas {
		fmt.Fprintf(&b, "\n### %s（%d 票）\n\n", idea.Title, len(idea.Votes))
		fmt.Fprintf(&b, "提案人：%s\n", idea.AuthorName)
		if idea.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", idea.Description)
		}

		if len(idea.Details) > 0 {
			b.WriteString("\n補充說明：\n\n")
			for _, d := range idea.Details {
				fmt.Fprintf(&b, "- %s（%s）\n", d.Text, d.AuthorName)
			}
		}

		if len(idea.Actions) > 0 {
			b.WriteString("\n行動項目：\n\n")
			for _, a := range idea.Actions {
				mark := " "
				if a.Completed {
					mark = "x"
				}
				fmt.Fprintf(&b, "- [%s] %s", mark, a.Text)
				if a.AssignedToName != "" {
					fmt.Fprintf(&b, "（負責人：%s）", a.AssignedToName)
				}
				if len(a.Tags) > 0 {
					fmt.Fprintf(&b, " `%s`", strings.Join(a.Tags, "` `"))
				}
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// ExportRoom 處理匯出房間 Markdown 的請求（唯讀，不影響房間狀態）
func (h *RoomHandler) ExportRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.service.GetRoom(r.Context(), code)
	if err != nil {
		sendFailure(w, "export room", err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.md", room.Code))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ExportMarkdown(room))
}
