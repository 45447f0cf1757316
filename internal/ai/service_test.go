package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func newService(t *testing.T, gen Generator) *Service {
	t.Helper()
	s, err := NewService(gen, 10, nil)
	require.NoError(t, err)
	return s
}

func TestSuggestions(t *testing.T) {
	gen := &fakeGenerator{reply: `{"sugestoes": ["Prazo", "Chefe", "Sono", "Trânsito"]}`}
	s := newService(t, gen)

	res := s.Suggestions(context.Background(), "Carreira: Trabalho", 2)
	require.False(t, res.Degraded)
	assert.Equal(t, []string{"Prazo", "Chefe", "Sono", "Trânsito"}, res.Value)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Área da Vida: Carreira: Trabalho")
	assert.Contains(t, gen.prompts[0], "Sentimento (1-10): 2 (indica sentimento extremamente negativo)")
}

func TestSuggestionsFallbacks(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"transport error", &fakeGenerator{err: errors.New("timeout")}},
		{"malformed json", &fakeGenerator{reply: `{"sugestoes": [`}},
		{"wrong key", &fakeGenerator{reply: `{"perguntas": ["x"]}`}},
		{"wrong item type", &fakeGenerator{reply: `{"sugestoes": [1, 2]}`}},
		{"empty list", &fakeGenerator{reply: `{"sugestoes": []}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newService(t, tt.gen).Suggestions(context.Background(), "Lazer", 5)
			assert.True(t, res.Degraded)
			assert.Error(t, res.Err)
			assert.Equal(t, FallbackSuggestions, res.Value)
		})
	}
}

func TestContractErrorsAreTyped(t *testing.T) {
	res := newService(t, &fakeGenerator{reply: "not json"}).Drilldown(context.Background(), "Prazo")
	assert.ErrorIs(t, res.Err, ErrContract)
}

func TestDescribe(t *testing.T) {
	s := newService(t, Stub{})
	assert.Equal(t, "extremamente negativo", s.describe(1))
	assert.Equal(t, "extremamente negativo", s.describe(3))
	assert.Equal(t, "negativo/neutro", s.describe(4))
	assert.Equal(t, "negativo/neutro", s.describe(6))
	assert.Equal(t, "muito positivo", s.describe(7))

	five, err := NewService(Stub{}, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "extremamente negativo", five.describe(1))
	assert.Equal(t, "negativo/neutro", five.describe(3))
	assert.Equal(t, "muito positivo", five.describe(4))
}

func TestDrilldown(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"perguntas\": [\"Quando?\", \"Onde?\"]}\n```"}
	res := newService(t, gen).Drilldown(context.Background(), "Prazo apertado")

	require.False(t, res.Degraded)
	assert.Equal(t, []string{"Quando?", "Onde?"}, res.Value)
	assert.Contains(t, gen.prompts[0], `Tópico: "Prazo apertado"`)

	res = newService(t, &fakeGenerator{err: errors.New("boom")}).Drilldown(context.Background(), "x")
	assert.True(t, res.Degraded)
	assert.Equal(t, FallbackQuestions, res.Value)
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGenerator{reply: `{"insight": "Faz sentido.", "acao": "Respire.", "sentimento_texto": "Frustração", "temas": ["Conflito", "Prazo"], "resumo": "Resumo."}`}
	res := newService(t, gen).Analyze(context.Background(), "Carreira", 4, "Meu chefe gritou comigo")

	require.False(t, res.Degraded)
	assert.Equal(t, "Faz sentido.", res.Value.Insight)
	assert.Equal(t, "Respire.", res.Value.Action)
	assert.Equal(t, "Frustração", res.Value.SentimentLabel)
	assert.Equal(t, []string{"Conflito", "Prazo"}, res.Value.Themes)
	assert.Equal(t, "Resumo.", res.Value.Summary)
	assert.Contains(t, gen.prompts[0], `com nota 4/10`)
	assert.Contains(t, gen.prompts[0], `Diário: "Meu chefe gritou comigo"`)
}

func TestAnalyzeMissingKeysDefault(t *testing.T) {
	res := newService(t, &fakeGenerator{reply: `{"insight": "Só isso."}`}).Analyze(context.Background(), "A", 5, "texto")

	require.False(t, res.Degraded)
	assert.Equal(t, "Só isso.", res.Value.Insight)
	assert.Equal(t, NotAvailable, res.Value.Action)
	assert.Equal(t, NotAvailable, res.Value.SentimentLabel)
	assert.Equal(t, NotAvailable, res.Value.Summary)
	assert.Empty(t, res.Value.Themes)
}

func TestAnalyzeEmptyJournalSkipsModel(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("must not be called")}
	res := newService(t, gen).Analyze(context.Background(), "A", 5, "   ")

	assert.False(t, res.Degraded)
	assert.Equal(t, "Seu check-in de sentimento foi salvo.", res.Value.Insight)
	assert.Empty(t, gen.prompts)
}

func TestAnalyzeFallback(t *testing.T) {
	res := newService(t, &fakeGenerator{reply: `{"temas": "not a list"}`}).Analyze(context.Background(), "A", 5, "texto")

	assert.True(t, res.Degraded)
	assert.Equal(t, "Houve um erro ao analisar seu diário.", res.Value.Insight)
	assert.Equal(t, "Tente novamente mais tarde.", res.Value.Action)
	assert.Equal(t, NotAvailable, res.Value.Summary)
}

func TestDraftMessage(t *testing.T) {
	gen := &fakeGenerator{reply: `{"recado": "  Estou aqui por você.  "}`}
	res := newService(t, gen).DraftMessage(context.Background(), "ana", []string{"Resumo A", "Resumo B"})

	require.False(t, res.Degraded)
	assert.Equal(t, "Estou aqui por você.", res.Value)
	assert.Contains(t, gen.prompts[0], "- Resumo A\n- Resumo B")

	res = newService(t, &fakeGenerator{reply: `{"recado": ""}`}).DraftMessage(context.Background(), "ana", nil)
	assert.True(t, res.Degraded)
	assert.Equal(t, FallbackMessage, res.Value)
}

func TestStubSatisfiesEveryContract(t *testing.T) {
	s := newService(t, Stub{})
	ctx := context.Background()

	assert.False(t, s.Suggestions(ctx, "A", 5).Degraded)
	assert.False(t, s.Drilldown(ctx, "x").Degraded)
	assert.False(t, s.Analyze(ctx, "A", 5, "texto").Degraded)
	assert.False(t, s.DraftMessage(ctx, "ana", nil).Degraded)
}
