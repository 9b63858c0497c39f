package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter 以 Redis 實作的固定窗口限流器，用於限制建立房間的頻率。
// INCR 與 EXPIRE 放在同一段 Lua 腳本內原子執行。
type Limiter struct {
	rdb *redis.Client
}

// NewLimiter 建立 Limiter 實例
func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

const fixedWindowScript = `
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = redis.call("INCR", key)

	-- 第一次訪問時設定過期時間，讓窗口自動重置
	if current == 1 then
		redis.call("EXPIRE", key, window)
	end

	if current > limit then
		return 0
	end
	return 1
`

// Allow 檢查指定 key（例如客戶端 IP）在窗口內是否仍可通過
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	result, err := l.rdb.Eval(ctx, fixedWindowScript, []string{key}, limit, int(window.Seconds())).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
