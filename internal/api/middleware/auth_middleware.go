package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/auth"
)

const tokenClaimsKey = "tokenClaims"

// TokenValidator 由 auth.TokenService 实现。
type TokenValidator interface {
	ValidateToken(token string) (*auth.TokenClaims, error)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// TokenMiddleware 解析 Bearer 令牌并把声明写入上下文。
// required 为 false 时允许不带令牌的请求；带了令牌但无效的请求一律拒绝。
func TokenMiddleware(tokens TokenValidator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				abortUnauthorized(c)
				return
			}
			c.Next()
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			LoggerFromContext(c).Info("reject invalid access token")
			abortUnauthorized(c)
			return
		}

		c.Set(tokenClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext 返回当前请求的令牌声明（如果有）。
func ClaimsFromContext(c *gin.Context) (*auth.TokenClaims, bool) {
	value, ok := c.Get(tokenClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*auth.TokenClaims)
	return claims, ok && claims != nil
}
