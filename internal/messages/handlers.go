package messages

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/wellness-checkin/internal/ai"
	"github.com/jimdaga/wellness-checkin/internal/auth"
	"github.com/jimdaga/wellness-checkin/internal/query"
)

// Drafter proposes a message from a patient's shared check-ins
type Drafter interface {
	DraftMessage(ctx context.Context, counselorID, patientID string) (ai.Result[string], error)
}

type sendRequest struct {
	PatientID string `json:"patient_id"`
	Text      string `json:"text"`
}

type draftRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
}

// InboxHandler lists the messages sent to the logged-in patient
func InboxHandler(thread *Thread) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": thread.ListForPatient(c.Request.Context(), user.Username, query.Limit(c))})
	}
}

// ConversationHandler lists what the logged-in counselor sent to a patient
func ConversationHandler(thread *Thread) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		msgs := thread.ListForPair(c.Request.Context(), user.Username, c.Param("patient"), query.Limit(c))
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}

// SendHandler stores a message from the logged-in counselor
func SendHandler(thread *Thread) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req sendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Recado inválido."})
			return
		}

		err := thread.Send(c.Request.Context(), user.Username, req.PatientID, req.Text)
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, gin.H{"message": "Recado enviado."})
		case errors.Is(err, ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Escreva o recado e escolha o paciente."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao enviar o recado."})
		}
	}
}

// DraftHandler returns an AI-drafted message for a patient
func DraftHandler(drafter Drafter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req draftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Escolha o paciente."})
			return
		}

		res, err := drafter.DraftMessage(c.Request.Context(), user.Username, req.PatientID)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recado": res.Value, "degraded": res.Degraded})
	}
}
