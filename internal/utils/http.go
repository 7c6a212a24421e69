package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetClientIP 只认引擎配置的可信代理转发的头，其余情况取连接地址
func GetClientIP(c *gin.Context) string {
	return c.ClientIP()
}

func formatID(id uint64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(id, 10)
}
