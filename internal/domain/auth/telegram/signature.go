package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// webAppDataKey is the HMAC key Telegram uses to derive the Mini App secret
// from a bot token.
const webAppDataKey = "WebAppData"

// DataCheckString builds the canonical message: every pair except hash,
// sorted by key in byte order, joined as key=value with "\n".
func DataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == keyHash {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(values.Get(k))
	}
	return sb.String()
}

// SecretKey returns HMAC-SHA256 keyed by "WebAppData" over the bot token.
func SecretKey(botToken string) []byte {
	mac := hmac.New(sha256.New, []byte(webAppDataKey))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

// Sign returns the lowercase hex signature of checkString for botToken.
func Sign(botToken, checkString string) string {
	mac := hmac.New(sha256.New, SecretKey(botToken))
	mac.Write([]byte(checkString))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether values carry a hash produced for botToken.
func Verify(botToken string, values url.Values) bool {
	expected := Sign(botToken, DataCheckString(values))
	return hmac.Equal([]byte(expected), []byte(values.Get(keyHash)))
}

// SignValues returns values encoded as initData with a fresh hash appended.
// Any hash already present is replaced. Handy for local clients and tests.
func SignValues(botToken string, values url.Values) string {
	signed := url.Values{}
	for k, v := range values {
		if k == keyHash {
			continue
		}
		signed[k] = append([]string(nil), v...)
	}
	signed.Set(keyHash, Sign(botToken, DataCheckString(signed)))
	return signed.Encode()
}
