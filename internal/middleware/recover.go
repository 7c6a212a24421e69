package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/utils"
)

func Recover(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"trace_id": TraceID(c),
					"path":     c.Request.URL.Path,
				}).Errorf("panic: %v\n%s", r, debug.Stack())
				status, resp := utils.Error(constant.NewError(constant.CodeSystemError), TraceID(c))
				c.AbortWithStatusJSON(status, resp)
			}
		}()
		c.Next()
	}
}
