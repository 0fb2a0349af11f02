package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio/internal/auth"
	"portfolio/internal/errcode"
)

const (
	userIDKey   = "userID"
	usernameKey = "username"
)

// AuthMiddleware 校验 Bearer 令牌并将 userID、username 注入上下文。
// 未携带令牌返回 401，令牌无效或过期返回 403。
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := bearerToken(c.GetHeader("Authorization"))
		if rawToken == "" {
			abortWith(c, errcode.ErrAuthRequired)
			return
		}

		principal, err := tokens.Validate(rawToken)
		if err != nil {
			LoggerFromContext(c).Info("token rejected", "error", err)
			abortWith(c, errcode.ErrAuthInvalid)
			return
		}

		c.Set(userIDKey, principal.ID)
		c.Set(usernameKey, principal.Username)
		c.Next()
	}
}

// bearerToken 取 Authorization 头的第二段，不校验前缀。
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// PrincipalFromContext 读取 AuthMiddleware 写入的身份。
func PrincipalFromContext(c *gin.Context) (auth.Principal, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return auth.Principal{}, false
	}
	userID, ok := id.(uint)
	if !ok {
		return auth.Principal{}, false
	}
	return auth.Principal{ID: userID, Username: c.GetString(usernameKey)}, true
}

func abortWith(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errcode.Status(err), gin.H{"error": errcode.Message(err)})
}
