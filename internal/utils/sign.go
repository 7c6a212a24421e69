package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignBody HMAC-SHA256(body)，小写十六进制
func SignBody(body []byte, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyBody 验证签名是否匹配，大小写不敏感，常量时间比较
func VerifyBody(body []byte, secretKey, sign string) bool {
	if sign == "" || secretKey == "" {
		return false
	}
	expected := SignBody(body, secretKey)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(sign))))
}
