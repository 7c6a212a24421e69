package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/utils"
)

// 门店终端请求体上限
const maxSignedBody = 1 << 20

// AuthHMAC 校验 X-Signature = hex(HMAC-SHA256(secret, body))
func AuthHMAC(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		sig := c.GetHeader("X-Signature")
		if sig == "" {
			abortUnauthorized(c, "missing signature")
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSignedBody))
		if err != nil {
			abortUnauthorized(c, "unreadable body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !utils.VerifyBody(body, secret, sig) {
			abortUnauthorized(c, "bad signature")
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	status, resp := utils.Error(constant.Errorf(constant.CodeSignatureError, msg), TraceID(c))
	c.AbortWithStatusJSON(status, resp)
}
