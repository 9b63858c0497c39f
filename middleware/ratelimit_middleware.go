package middleware

import (
	"log"
	"net/http"
	"time"

	"go-brainstorm/backend/limiter"
	"go-brainstorm/backend/utils"
)

const (
	// createRoomLimit 每個 IP 在窗口內允許建立的房間數
	createRoomLimit = 10

	// createRoomWindow 限流窗口長度
	createRoomWindow = time.Minute
)

// RateLimitMiddleware 對建立房間的請求做每 IP 限流。
// limiter 為 nil 時（未配置 Redis）直接放行。
func RateLimitMiddleware(l *limiter.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:create_room:" + utils.ClientIP(r)
		allowed, err := l.Allow(r.Context(), key, createRoomLimit, createRoomWindow)
		if err != nil {
			// 限流器故障不應阻斷正常流量，記錄後放行
			log.Printf("Rate limiter error for %s: %v", key, err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			http.Error(w, "Too many rooms created, please try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
