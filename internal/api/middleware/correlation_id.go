package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	correlationIDKey    = "correlationID"
	correlationIDHeader = "X-Correlation-ID"
	maxCorrelationIDLen = 64
)

// CorrelationIDMiddleware 确保每个请求都带有 Correlation ID。
// 客户端传入的值过长或含非法字符时重新生成。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationIDHeader)
		if !validCorrelationID(id) {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(correlationIDHeader, id)

		c.Next()
	}
}

func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// GetCorrelationID 从上下文中取出 Correlation ID。
func GetCorrelationID(c *gin.Context) string {
	if value, ok := c.Get(correlationIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
