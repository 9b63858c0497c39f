package utils

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/http"
	"strings"
)

const (
	// RoomCodeAlphabet 房間代碼使用的字元集，排除容易混淆的 I、O、0、1
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// RoomCodeLength 房間代碼固定長度
	RoomCodeLength = 5
)

// GenerateRoomCode 產生一組候選房間代碼。
// 全域唯一性由資料庫的唯一索引保證，這裡只負責隨機性。
func GenerateRoomCode() (string, error) {
	buf := make([]byte, RoomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = RoomCodeAlphabet[int(b)%len(RoomCodeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeRoomCode 統一房間代碼格式（去除空白並轉大寫）
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ClientIP 從請求中取出客戶端 IP，優先採用反向代理填入的 X-Forwarded-For
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// X-Forwarded-For 可能是逗號分隔的多個 IP，取第一個（最原始的來源）
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
