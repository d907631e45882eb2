package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"media-service/pkg/config"
)

// RequestContextMiddleware 注入 user_uuid 和 request_id，便于下游和日志使用。
// 身份优先取 Authorization Bearer 令牌的 subject，其次取 X-User-UUID 头。
func RequestContextMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}

		userUUID := subjectFromBearer(c.GetHeader("Authorization"), jwtCfg)
		if userUUID == "" {
			userUUID = c.GetHeader("X-User-UUID")
		}
		if userUUID != "" {
			c.Set("user_uuid", userUUID)
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

// RequesterID 读取当前请求者身份，未认证时返回空串。
func RequesterID(c *gin.Context) string {
	return c.GetString("user_uuid")
}

func subjectFromBearer(header string, jwtCfg config.JWTConfig) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) || jwtCfg.Secret == "" {
		return ""
	}
	raw := strings.TrimPrefix(header, prefix)

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if jwtCfg.Issuer != "" {
		if iss, _ := claims.GetIssuer(); iss != jwtCfg.Issuer {
			return ""
		}
	}
	sub, _ := claims.GetSubject()
	return sub
}
