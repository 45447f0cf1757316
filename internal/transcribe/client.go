package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client handles communication with the speech-recognition endpoint
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	stubMode   bool
	logger     *slog.Logger
}

// NewClient creates a transcription client. Stub mode never calls out.
func NewClient(url, token string, stubMode bool, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		stubMode:   stubMode,
		logger:     logger,
	}
}

// Transcribe returns the text spoken in audio, or ErrorText on any failure
func (c *Client) Transcribe(ctx context.Context, audio []byte) string {
	text, err := c.transcribe(ctx, audio)
	if err != nil {
		c.logger.Warn("Transcription failed", "error", err, "bytes", len(audio))
		return ErrorText
	}
	c.logger.Info("Transcription completed", "chars", len(text))
	return text
}

func (c *Client) transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio")
	}

	if c.stubMode {
		return "Hoje foi um dia cansativo, mas consegui terminar o que precisava.", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", http.DetectContentType(audio))
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("transcription endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return strings.Trim(strings.TrimSpace(out.Text), `"`), nil
}

// AppendTranscript adds a transcript on a new line after the journal text
func AppendTranscript(journal, transcript string) string {
	return strings.TrimSpace(journal + "\n" + transcript)
}
