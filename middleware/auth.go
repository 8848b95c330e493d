package middleware

import (
	"net/http"
	"strings"

	"go-city/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验 Bearer 令牌；secret 为空时不做任何校验
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, err := utils.ParseAccessToken(token, []byte(secret))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("subject", claims.Subject)
		c.Next()
	}
}
