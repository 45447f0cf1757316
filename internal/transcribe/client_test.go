package transcribe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": " \"Hoje eu dormi mal.\" "}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "hf_token", false, nil)
	text := c.Transcribe(context.Background(), []byte("RIFF....WAVE"))

	assert.Equal(t, "Hoje eu dormi mal.", text)
	assert.Equal(t, "Bearer hf_token", gotAuth)
	assert.Equal(t, []byte("RIFF....WAVE"), gotBody)
}

func TestTranscribeFailuresReturnSentinel(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		audio   []byte
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		}, []byte("audio")},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}, []byte("audio")},
		{"empty audio", func(w http.ResponseWriter, r *http.Request) {
			t.Error("endpoint must not be called for empty audio")
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, "", false, nil)
			assert.Equal(t, ErrorText, c.Transcribe(context.Background(), tt.audio))
		})
	}
}

func TestTranscribeStubMode(t *testing.T) {
	c := NewClient("http://unused.invalid", "", true, nil)
	text := c.Transcribe(context.Background(), []byte("audio"))
	require.NotEqual(t, ErrorText, text)
	assert.NotEmpty(t, text)
}

func TestAppendTranscript(t *testing.T) {
	assert.Equal(t, "Sobre 'Prazo': \nfalei com meu chefe", AppendTranscript("Sobre 'Prazo': ", "falei com meu chefe"))
	assert.Equal(t, "só áudio", AppendTranscript("", "só áudio"))
}
