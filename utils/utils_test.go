// backend/utils/utils_test.go
package utils

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert" // 引入 testify/assert
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode()

		assert.NoError(t, err, "產生房間代碼不應該返回錯誤")
		assert.Len(t, code, RoomCodeLength, "代碼長度應為固定的 5 碼")

		for _, c := range code {
			assert.True(t, strings.ContainsRune(RoomCodeAlphabet, c),
				"代碼只能包含字元集內的字元")
		}
		seen[code] = true
	}

	// 100 次抽樣全部相同的機率趨近於零，用來確認代碼確實有隨機性
	assert.Greater(t, len(seen), 1, "產生的代碼應該具有隨機性")
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABCDE", NormalizeRoomCode(" abcde "), "代碼應去除空白並轉大寫")
	assert.Equal(t, "XY234", NormalizeRoomCode("xy234"))
}

func TestClientIP(t *testing.T) {
	r, _ := http.NewRequest("POST", "/rooms", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	assert.Equal(t, "192.0.2.10", ClientIP(r), "未經代理時應取 RemoteAddr 的 host 部分")

	// 經過反向代理時應取 X-Forwarded-For 的第一個 IP
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 192.0.2.10")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}
