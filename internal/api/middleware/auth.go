package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeclash/codeclash-backend/internal/identity"
	jwtutil "github.com/codeclash/codeclash-backend/pkg/jwt"
)

// ContextUserKey 인증 미들웨어가 해석한 사용자 정보를 담는 컨텍스트 키
const ContextUserKey = "user"

// ExtractToken 요청에서 자격 토큰 추출
//
// 우선순위 고정: 연결 auth 페이로드(auth 쿼리) → token 쿼리 →
// Authorization Bearer 헤더. 먼저 발견된 소스가 이긴다.
func ExtractToken(r *http.Request) string {
	if token := r.URL.Query().Get("auth"); token != "" {
		return token
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	return ""
}

// Auth 세션 인증 미들웨어
//
// 토큰 검증 후 주체를 외부 사용자 스토어에서 해석한다. 실패 시 연결은
// admit 전에 거부되며 부분 상태를 만들지 않는다.
func Auth(jwtManager *jwtutil.Manager, resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), claims.Subject())
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrUserNotFound):
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "user not found",
				})
			default:
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"error": "user store unavailable",
				})
			}
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
