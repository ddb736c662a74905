package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
)

const (
	AccessCookie = "access_token"
	userKey      = "auth.user"
)

// TokenValidator resolves an access token to its user.
type TokenValidator interface {
	Validate(ctx context.Context, in dto.ValidateDTO) (model.User, error)
}

// AccessToken берёт токен из Authorization: Bearer, иначе из cookie.
func AccessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, _ := c.Cookie(AccessCookie)
	return token
}

// RequireAuth пропускает дальше только запросы с действующим access-токеном.
func RequireAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := AccessToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		user, err := v.Validate(c.Request.Context(), dto.ValidateDTO{AccessToken: token})
		if err != nil {
			if customErrors.IsInvalidToken(err) || customErrors.IsInvalidArgument(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser возвращает пользователя, сохранённого RequireAuth.
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}
