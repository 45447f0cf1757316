package checkins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jimdaga/wellness-checkin/internal/ai"
	"github.com/jimdaga/wellness-checkin/internal/areas"
	"github.com/jimdaga/wellness-checkin/internal/models"
	"github.com/jimdaga/wellness-checkin/internal/transcribe"
)

// ErrValidation marks a submission rejected before any remote call
var ErrValidation = errors.New("invalid check-in")

// ValidationError carries the message shown to the user
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid check-in: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Submission is what the patient sends when registering a check-in
type Submission struct {
	PatientID      string
	CounselorID    string
	Area           string
	SentimentScore int
	Topics         []string
	OtherTopic     string
	Journal        string
	Shared         bool
}

// SubmitResult is the saved record and whether its analysis is a fallback
type SubmitResult struct {
	Record   models.CheckinRecord
	Degraded bool
}

// Service sequences the calls of the check-in flow
type Service struct {
	manager     *Manager
	ai          *ai.Service
	areas       *areas.Registry
	transcriber *transcribe.Client
	logger      *slog.Logger
}

// NewService wires the check-in flow
func NewService(manager *Manager, aiService *ai.Service, registry *areas.Registry, transcriber *transcribe.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		manager:     manager,
		ai:          aiService,
		areas:       registry,
		transcriber: transcriber,
		logger:      logger,
	}
}

// Manager exposes the record manager for handlers that only read or delete
func (s *Service) Manager() *Manager {
	return s.manager
}

// Suggestions returns likely triggers for the rated area
func (s *Service) Suggestions(ctx context.Context, area string, score int) (ai.Result[[]string], error) {
	if err := s.validateScore(score); err != nil {
		return ai.Result[[]string]{}, err
	}
	return s.ai.Suggestions(ctx, s.areas.Resolve(area), score), nil
}

// Drilldown returns questions about the first selected topic and the text
// the journal starts with
func (s *Service) Drilldown(ctx context.Context, topics []string) (ai.Result[[]string], string, error) {
	topics = MergeTopics(topics, "")
	if len(topics) == 0 {
		return ai.Result[[]string]{}, "", &ValidationError{Message: "Selecione ao menos um tópico."}
	}
	first := topics[0]
	return s.ai.Drilldown(ctx, first), fmt.Sprintf("Sobre '%s': ", first), nil
}

// Transcribe appends the transcript of audio to the journal text
func (s *Service) Transcribe(ctx context.Context, audio []byte, journal string) string {
	if len(audio) == 0 {
		return journal
	}
	return transcribe.AppendTranscript(journal, s.transcriber.Transcribe(ctx, audio))
}

// Submit analyzes and stores a check-in. AI failures degrade to fallback
// text; a store failure aborts the submission.
func (s *Service) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	if strings.TrimSpace(sub.PatientID) == "" {
		return SubmitResult{}, &ValidationError{Message: "Faça login para registrar um check-in."}
	}
	if err := s.validateScore(sub.SentimentScore); err != nil {
		return SubmitResult{}, err
	}

	area := s.areas.Resolve(strings.TrimSpace(sub.Area))
	journal := strings.TrimSpace(sub.Journal)

	analysis := s.ai.Analyze(ctx, area, sub.SentimentScore, journal)
	if analysis.Degraded {
		s.logger.Warn("Saving check-in with fallback analysis", "patient_id", sub.PatientID, "error", analysis.Err)
	}

	rec := models.CheckinRecord{
		Area:           area,
		SentimentScore: sub.SentimentScore,
		Topics:         MergeTopics(sub.Topics, sub.OtherTopic),
		Journal:        journal,
		Analysis:       analysis.Value,
		PatientID:      sub.PatientID,
		CounselorID:    sub.CounselorID,
		Shared:         sub.Shared,
	}
	if err := s.manager.Append(ctx, &rec); err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{Record: rec, Degraded: analysis.Degraded}, nil
}

// DraftMessage proposes a message for patientID from the check-ins they
// shared with counselorID
func (s *Service) DraftMessage(ctx context.Context, counselorID, patientID string) (ai.Result[string], error) {
	shared, err := s.manager.ListShared(ctx, counselorID, patientID, 5)
	if err != nil {
		return ai.Result[string]{}, err
	}

	summaries := make([]string, 0, len(shared))
	for _, rec := range shared {
		if rec.Analysis.Summary != "" && rec.Analysis.Summary != ai.NotAvailable {
			summaries = append(summaries, rec.Analysis.Summary)
		}
	}
	return s.ai.DraftMessage(ctx, patientID, summaries), nil
}

func (s *Service) validateScore(score int) error {
	if score < 1 || score > s.ai.ScaleMax() {
		return &ValidationError{Message: fmt.Sprintf("A nota deve estar entre 1 e %d.", s.ai.ScaleMax())}
	}
	return nil
}

// MergeTopics trims the selected topics, drops blanks and repeats, and adds
// the free-text topic at the end
func MergeTopics(selected []string, other string) []string {
	out := []string{}
	seen := make(map[string]bool, len(selected)+1)
	for _, t := range append(append([]string(nil), selected...), other) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
