// Package auth logs users in against the user directory and keeps the
// identity in a cookie session.
package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/wellness-checkin/internal/models"
)

// Session and context keys
const (
	KeyUserID        = "user_id"
	KeyUserRole      = "user_role"
	KeyUserCounselor = "user_counselor"
)

// SessionName is the cookie name of the login session
const SessionName = "checkin_session"

func saveUser(c *gin.Context, user models.User) error {
	session := sessions.Default(c)
	session.Set(KeyUserID, user.Username)
	session.Set(KeyUserRole, string(user.Role))
	session.Set(KeyUserCounselor, user.Counselor)
	return session.Save()
}

// SetUser exposes user to downstream handlers
func SetUser(c *gin.Context, user models.User) {
	c.Set(KeyUserID, user.Username)
	c.Set(KeyUserRole, string(user.Role))
	c.Set(KeyUserCounselor, user.Counselor)
}

// CurrentUser returns the user set by RequireAuth
func CurrentUser(c *gin.Context) (models.User, bool) {
	id := c.GetString(KeyUserID)
	if id == "" {
		return models.User{}, false
	}
	return models.User{
		Username:  id,
		Role:      models.Role(c.GetString(KeyUserRole)),
		Counselor: c.GetString(KeyUserCounselor),
	}, true
}
