package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"
)

// Generator sends one prompt to a hosted model and returns its raw JSON text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Temperature used for every call
const Temperature = 0.8

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-flash-latest"

// Gemini generates through Google's Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Generate asks for a JSON response
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := float32(Temperature)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("GenAI returned an empty response")
	}
	return text, nil
}

// Name returns the generator name for logs
func (g *Gemini) Name() string {
	return "gemini:" + g.model
}

// OpenAI generates through any OpenAI-compatible chat endpoint
type OpenAI struct {
	llm   llms.Model
	model string
}

// NewOpenAI creates an OpenAI-compatible generator. baseURL may be empty for
// the default OpenAI endpoint.
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithResponseFormat(&openai.ResponseFormat{
			Type: "json_object",
		}),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return &OpenAI{llm: llm, model: model}, nil
}

// Generate sends the prompt as a single user message
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt, llms.WithTemperature(Temperature))
	if err != nil {
		return "", fmt.Errorf("OpenAI generate failed: %w", err)
	}
	return text, nil
}

// Name returns the generator name for logs
func (o *OpenAI) Name() string {
	return "openai:" + o.model
}

// Stub returns canned, valid payloads for local development without an API key
type Stub struct{}

// Generate picks a payload by the JSON key the prompt asks for
func (Stub) Generate(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, `"sugestoes"`):
		return `{"sugestoes": ["Prazo apertado no trabalho", "Pouco tempo de descanso", "Conversa difícil em casa", "Sensação de sobrecarga"]}`, nil
	case strings.Contains(prompt, `"perguntas"`):
		return `{"perguntas": ["Quando isso começou?", "Como você reagiu?", "O que ajudaria agora?", "Quem poderia te apoiar?"]}`, nil
	case strings.Contains(prompt, `"recado"`):
		return `{"recado": "Obrigada por compartilhar seus registros. Vamos conversar sobre isso na próxima sessão."}`, nil
	case strings.Contains(prompt, `"resumo"`):
		return `{"insight": "Faz sentido se sentir assim diante de tanta coisa.", "acao": "Reserve dez minutos hoje para uma pausa sem telas.", "sentimento_texto": "Cansaço", "temas": ["Sobrecarga", "Descanso"], "resumo": "Paciente relata cansaço acumulado. Sugere necessidade de pausas regulares."}`, nil
	default:
		return "", errors.New("stub generator: unrecognized prompt")
	}
}

// Name returns the generator name for logs
func (Stub) Name() string {
	return "stub"
}
