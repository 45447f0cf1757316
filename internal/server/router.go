package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/wellness-checkin/internal/areas"
	"github.com/jimdaga/wellness-checkin/internal/auth"
	"github.com/jimdaga/wellness-checkin/internal/checkins"
	"github.com/jimdaga/wellness-checkin/internal/health"
	"github.com/jimdaga/wellness-checkin/internal/messages"
	"github.com/jimdaga/wellness-checkin/internal/models"
)

// NewRouter registers every route of the service
func NewRouter(app *App) *gin.Engine {
	if app.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(app.Logger))

	store := cookie.NewStore([]byte(app.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   app.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(auth.SessionName, store))

	r.GET("/health", gin.WrapF(health.Handler))

	r.POST("/login", auth.HandleLogin(app.Directory, app.Logger))
	r.POST("/signup", auth.HandleSignup(app.Directory))
	r.GET("/signup/counselors", auth.HandleCounselors(app.Directory))
	r.POST("/logout", auth.HandleLogout(app.Logger))

	api := r.Group("/api", auth.RequireAuth())
	api.GET("/areas", areas.ListHandler(app.Areas))

	patient := api.Group("", auth.RequireRole(models.RolePatient))
	patient.POST("/checkins/suggestions", checkins.SuggestionsHandler(app.Checkins))
	patient.POST("/checkins/drilldown", checkins.DrilldownHandler(app.Checkins))
	patient.POST("/checkins/transcribe", checkins.TranscribeHandler(app.Checkins))
	patient.POST("/checkins", checkins.SubmitHandler(app.Checkins))
	patient.DELETE("/checkins/latest", checkins.DiscardHandler(app.Checkins))
	patient.GET("/checkins", checkins.HistoryHandler(app.Checkins))
	patient.GET("/messages", messages.InboxHandler(app.Messages))

	counselor := api.Group("/counselor", auth.RequireRole(models.RoleCounselor))
	counselor.GET("/patients/:patient/checkins", checkins.SharedHistoryHandler(app.Checkins))
	counselor.GET("/patients/:patient/messages", messages.ConversationHandler(app.Messages))
	counselor.POST("/messages", messages.SendHandler(app.Messages))
	counselor.POST("/messages/draft", messages.DraftHandler(app.Checkins))

	return r
}
