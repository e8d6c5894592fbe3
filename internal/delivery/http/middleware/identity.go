package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// UserIDHeader выставляет шлюз после аутентификации
const UserIDHeader = "X-User-ID"

type userIDKey struct{}

// Identity кладет id пользователя из заголовка в контекст запроса
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "error": "missing " + UserIDHeader})
			return
		}
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// HeaderIdentity - IdentityProvider поверх контекста, заполненного Identity
type HeaderIdentity struct{}

func (HeaderIdentity) CurrentUser(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(userIDKey{}).(string)
	if userID == "" {
		return "", domain.ErrForbidden
	}
	return userID, nil
}

var _ domain.IdentityProvider = HeaderIdentity{}
