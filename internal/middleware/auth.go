package middleware

import (
	"errors"
	"net/http"

	"askboard/internal/logctx"
	"askboard/internal/models"
	"askboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged-in user id.
const SessionUserKey = "user_id"

// AuthRequired rejects requests without a logged-in user. LoadUser must run
// first.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			WriteError(c, http.StatusUnauthorized, "unauthenticated", "login required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the session user and stores it in the gin context. A
// session pointing at a deleted user is cleared.
func LoadUser(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(SessionUserKey).(string)

		if userID != "" {
			user, err := accounts.Get(c.Request.Context(), userID)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
			case errors.Is(err, services.ErrNotFound):
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				logctx.From(c.Request.Context()).Error("load_session_user_failed", "err", err.Error())
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentActor returns the caller as a services.Actor; anonymous callers
// get the zero Actor.
func CurrentActor(c *gin.Context) services.Actor {
	return services.ActorFromUser(CurrentUser(c))
}
