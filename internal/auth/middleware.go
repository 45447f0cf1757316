package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/wellness-checkin/internal/models"
)

// RequireAuth is a middleware that ensures the user is logged in
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(KeyUserID).(string)

		if userID == "" {
			if c.GetHeader("HX-Request") == "true" {
				c.Header("HX-Redirect", "/login")
				c.AbortWithStatus(http.StatusUnauthorized)
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Faça login para continuar."})
			}
			return
		}

		role, _ := session.Get(KeyUserRole).(string)
		counselor, _ := session.Get(KeyUserCounselor).(string)
		SetUser(c, models.User{Username: userID, Role: models.Role(role), Counselor: counselor})

		c.Next()
	}
}

// RequireRole rejects users whose session role differs. Use after RequireAuth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acesso não permitido."})
			return
		}
		c.Next()
	}
}
