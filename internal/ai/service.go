// Package ai composes prompts for the hosted generative-language model and
// turns its JSON replies into typed results, falling back to fixed defaults
// whenever the call or the reply fails.
package ai

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/jimdaga/wellness-checkin/internal/models"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Default values substituted when the model fails
var (
	FallbackSuggestions = []string{"Fale sobre seu dia", "O que mais te marcou hoje?"}
	FallbackQuestions   = []string{"Pode detalhar mais?", "Como você se sentiu?"}
	FallbackMessage     = "Olá! Vi seus últimos registros e estou aqui para conversar quando precisar."
)

// NotAvailable fills analysis fields the model did not return
const NotAvailable = "N/A"

// DefaultScaleMax is the top of the sentiment scale
const DefaultScaleMax = 10

// Service is the generative-language collaborator
type Service struct {
	gen      Generator
	scaleMax int
	logger   *slog.Logger

	prompts   *template.Template
	contracts map[string]*contract
}

// NewService loads prompts and response contracts. scaleMax <= 0 selects
// DefaultScaleMax.
func NewService(gen Generator, scaleMax int, logger *slog.Logger) (*Service, error) {
	if scaleMax <= 0 {
		scaleMax = DefaultScaleMax
	}
	if logger == nil {
		logger = slog.Default()
	}

	prompts, err := template.ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}

	s := &Service{
		gen:       gen,
		scaleMax:  scaleMax,
		logger:    logger,
		prompts:   prompts,
		contracts: make(map[string]*contract),
	}
	for _, name := range []string{"suggestions", "drilldown", "analysis", "message"} {
		c, err := loadContract(name)
		if err != nil {
			return nil, err
		}
		s.contracts[name] = c
	}
	return s, nil
}

// ScaleMax is the top of the sentiment scale the service was built with
func (s *Service) ScaleMax() int {
	return s.scaleMax
}

// Suggestions returns likely triggers for a score in an area
func (s *Service) Suggestions(ctx context.Context, area string, score int) Result[[]string] {
	var out struct {
		Suggestions []string `json:"sugestoes"`
	}
	err := s.call(ctx, "suggestions", map[string]interface{}{
		"Area":        area,
		"Score":       score,
		"ScaleMax":    s.scaleMax,
		"Description": s.describe(score),
	}, &out)
	if err != nil {
		return degraded(FallbackSuggestions, err)
	}
	return ok(out.Suggestions)
}

// Drilldown returns key questions about one selected topic
func (s *Service) Drilldown(ctx context.Context, topic string) Result[[]string] {
	var out struct {
		Questions []string `json:"perguntas"`
	}
	if err := s.call(ctx, "drilldown", map[string]interface{}{"Topic": topic}, &out); err != nil {
		return degraded(FallbackQuestions, err)
	}
	return ok(out.Questions)
}

// Analyze produces the insight, action, sentiment label, themes and summary
// of a journal. An empty journal is not sent to the model.
func (s *Service) Analyze(ctx context.Context, area string, score int, journal string) Result[models.Analysis] {
	if strings.TrimSpace(journal) == "" {
		return ok(withDefaults(models.Analysis{
			Insight: "Seu check-in de sentimento foi salvo.",
			Action:  "Na próxima vez, tente escrever um diário ou gravar um áudio para receber mais insights.",
		}))
	}

	var out models.Analysis
	err := s.call(ctx, "analysis", map[string]interface{}{
		"Area":     area,
		"Score":    score,
		"ScaleMax": s.scaleMax,
		"Journal":  journal,
	}, &out)
	if err != nil {
		return degraded(withDefaults(models.Analysis{
			Insight: "Houve um erro ao analisar seu diário.",
			Action:  "Tente novamente mais tarde.",
		}), err)
	}
	return ok(withDefaults(out))
}

// DraftMessage proposes a counselor message from a patient's recent summaries
func (s *Service) DraftMessage(ctx context.Context, patient string, summaries []string) Result[string] {
	var out struct {
		Message string `json:"recado"`
	}
	err := s.call(ctx, "message", map[string]interface{}{
		"Patient":   patient,
		"Summaries": summaries,
	}, &out)
	if err != nil {
		return degraded(FallbackMessage, err)
	}
	return ok(strings.TrimSpace(out.Message))
}

// call renders the prompt, runs the generator and decodes the reply.
// Errors are logged here; callers only pick the fallback.
func (s *Service) call(ctx context.Context, name string, data interface{}, out interface{}) error {
	var prompt bytes.Buffer
	if err := s.prompts.ExecuteTemplate(&prompt, name+".tmpl", data); err != nil {
		s.logger.Error("Failed to render prompt", "prompt", name, "error", err)
		return fmt.Errorf("failed to render prompt %s: %w", name, err)
	}

	raw, err := s.gen.Generate(ctx, prompt.String())
	if err != nil {
		s.logger.Warn("Model call failed, using fallback", "prompt", name, "error", err)
		return err
	}

	if err := s.contracts[name].decode(raw, out); err != nil {
		s.logger.Warn("Model reply rejected, using fallback", "prompt", name, "error", err)
		return err
	}

	s.logger.Debug("Model reply accepted", "prompt", name)
	return nil
}

// describe puts the score in words relative to the scale
func (s *Service) describe(score int) string {
	switch {
	case score*10 <= s.scaleMax*3:
		return "extremamente negativo"
	case score*10 <= s.scaleMax*6:
		return "negativo/neutro"
	default:
		return "muito positivo"
	}
}

func withDefaults(a models.Analysis) models.Analysis {
	if a.Insight == "" {
		a.Insight = NotAvailable
	}
	if a.Action == "" {
		a.Action = NotAvailable
	}
	if a.SentimentLabel == "" {
		a.SentimentLabel = NotAvailable
	}
	if a.Summary == "" {
		a.Summary = NotAvailable
	}
	if a.Themes == nil {
		a.Themes = []string{}
	}
	return a
}
