package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/wellness-checkin/internal/directory"
)

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type signupRequest struct {
	credentials
	Counselor string `json:"counselor" form:"counselor"`
}

// HandleLogin checks the credentials and stores the identity in the session
func HandleLogin(dir *directory.Directory, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Informe usuário e senha."})
			return
		}

		user, ok := dir.Authenticate(c.Request.Context(), req.Username, req.Password)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuário ou senha incorretos."})
			return
		}

		if err := saveUser(c, user); err != nil {
			logger.Error("Session save error", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível iniciar a sessão."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// HandleSignup registers a patient linked to a counselor
func HandleSignup(dir *directory.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cadastro inválido."})
			return
		}

		err := dir.Create(c.Request.Context(), req.Username, req.Password, req.Counselor)
		msg := directory.Message(err)
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, gin.H{"message": msg})
		case errors.Is(err, directory.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": msg})
		case errors.Is(err, directory.ErrInvalidCredentials), errors.Is(err, directory.ErrInvalidCounselor):
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		}
	}
}

// HandleCounselors lists the counselors a patient can pick at signup
func HandleCounselors(dir *directory.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := dir.Counselors(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": directory.Message(err)})
			return
		}
		if names == nil {
			names = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"counselors": names})
	}
}

// HandleLogout clears the session
func HandleLogout(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Clear()

		if err := session.Save(); err != nil {
			logger.Error("Session clear error", "error", err)
		}

		c.Status(http.StatusNoContent)
	}
}
