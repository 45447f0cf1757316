package checkins

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/wellness-checkin/internal/auth"
	"github.com/jimdaga/wellness-checkin/internal/query"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
)

// MaxAudioBytes bounds uploaded journal recordings
const MaxAudioBytes = 10 << 20

type suggestionsRequest struct {
	Area      string `json:"area"`
	Sentiment int    `json:"sentiment" binding:"required"`
}

type drilldownRequest struct {
	Topics []string `json:"topics"`
}

type submitRequest struct {
	Area       string   `json:"area"`
	Sentiment  int      `json:"sentiment" binding:"required"`
	Topics     []string `json:"topics"`
	OtherTopic string   `json:"other_topic"`
	Journal    string   `json:"journal"`
	Shared     *bool    `json:"shared"`
}

// SuggestionsHandler returns AI trigger suggestions for the rated area
func SuggestionsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req suggestionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Informe a área e a nota."})
			return
		}

		res, err := svc.Suggestions(c.Request.Context(), req.Area, req.Sentiment)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"sugestoes": res.Value, "degraded": res.Degraded})
	}
}

// DrilldownHandler returns key questions about the first selected topic
func DrilldownHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req drilldownRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selecione ao menos um tópico."})
			return
		}

		res, seed, err := svc.Drilldown(c.Request.Context(), req.Topics)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"perguntas":    res.Value,
			"journal_seed": seed,
			"degraded":     res.Degraded,
		})
	}
}

// TranscribeHandler appends the transcript of the uploaded "audio" file to
// the "journal" form field. Without audio the journal comes back unchanged;
// an oversized or unreadable upload is rejected.
func TranscribeHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAudioBytes)
		if err := c.Request.ParseMultipartForm(MaxAudioBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "O áudio é grande demais."})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Não foi possível ler o áudio."})
			return
		}
		journal := c.PostForm("journal")

		fh, err := c.FormFile("audio")
		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusOK, gin.H{"journal": journal})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Não foi possível ler o áudio."})
			return
		}

		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Não foi possível ler o áudio."})
			return
		}
		defer f.Close()

		audio, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Não foi possível ler o áudio."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"journal": svc.Transcribe(c.Request.Context(), audio, journal)})
	}
}

// SubmitHandler analyzes and saves a check-in for the logged-in patient
func SubmitHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Check-in inválido."})
			return
		}

		shared := true
		if req.Shared != nil {
			shared = *req.Shared
		}

		res, err := svc.Submit(c.Request.Context(), Submission{
			PatientID:      user.Username,
			CounselorID:    user.Counselor,
			Area:           req.Area,
			SentimentScore: req.Sentiment,
			Topics:         req.Topics,
			OtherTopic:     req.OtherTopic,
			Journal:        req.Journal,
			Shared:         shared,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "Seu check-in foi salvo com sucesso!",
			"analysis": res.Record.Analysis,
			"record":   res.Record,
			"degraded": res.Degraded,
		})
	}
}

// DiscardHandler deletes the logged-in patient's most recent check-in
func DiscardHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		deleted := svc.Manager().DeleteMostRecent(c.Request.Context(), user.Username)
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}

// HistoryHandler lists the logged-in patient's check-ins, most recent first
func HistoryHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		entries, err := svc.Manager().ListForOwner(c.Request.Context(), user.Username, query.Limit(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"checkins": entries})
	}
}

// SharedHistoryHandler lists the check-ins a patient shared with the
// logged-in counselor
func SharedHistoryHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		records, err := svc.Manager().ListShared(c.Request.Context(), user.Username, c.Param("patient"), query.Limit(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"checkins": records})
	}
}

func respondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, rowstore.ErrColumnNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStoreUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao processar o check-in."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro inesperado."})
	}
}
