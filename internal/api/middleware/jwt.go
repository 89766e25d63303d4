package middleware

import (
	"net/http"
	"strconv"

	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/metrics"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/revoke"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie 承载会话令牌的 Cookie 名称。
const SessionCookie = "jwt"

// AuthMiddleware 校验会话 Cookie 中的 JWT 并将 userID 写入上下文。
//
// 令牌无效、过期或已被吊销时返回 401 并中断请求。
func AuthMiddleware(jwtSecret string, revoked *revoke.List) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			c.Abort()
			return
		}

		if claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			c.Abort()
			return
		}

		uid, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			c.Abort()
			return
		}

		if revoked.IsRevoked(c.Request.Context(), claims.ID) {
			if metrics.RevokedTokenTotal != nil {
				metrics.RevokedTokenTotal.Inc()
			}
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			c.Abort()
			return
		}

		c.Set("userID", uint(uid))
		c.Next()
	}
}

// GetUserID 从上下文读取认证中间件写入的用户 ID。
func GetUserID(c *gin.Context) uint {
	v, ok := c.Get("userID")
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}
