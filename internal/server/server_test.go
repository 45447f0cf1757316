package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/wellness-checkin/internal/config"
	"github.com/jimdaga/wellness-checkin/internal/database"
	"github.com/jimdaga/wellness-checkin/internal/logging"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:               "test",
		SessionSecret:     "test-secret",
		StoreBackend:      config.BackendMemory,
		AIProvider:        config.ProviderStub,
		UserCacheTTL:      time.Minute,
		SentimentScaleMax: 10,
		HistoryLimit:      20,
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return w
}

func newClient(t *testing.T, app *App, username, password string) *client {
	t.Helper()
	c := &client{t: t, handler: NewRouter(app)}
	w := c.do(http.MethodPost, "/login", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return c
}

func newApp(t *testing.T, logs *bytes.Buffer) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := NewApp(context.Background(), testConfig(), logging.New(logs, "info", "json"))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestHealth(t *testing.T) {
	var logs bytes.Buffer
	c := &client{t: t, handler: NewRouter(newApp(t, &logs))}

	w := c.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"path":"/health"`)
}

func TestCheckinFlowEndToEnd(t *testing.T) {
	var logs bytes.Buffer
	app := newApp(t, &logs)
	patient := newClient(t, app, database.DevPatient, database.DevPassword)

	w := patient.do(http.MethodGet, "/api/areas", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = patient.do(http.MethodPost, "/api/checkins/suggestions", `{"area":"Lazer","sentiment":3}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = patient.do(http.MethodPost, "/api/checkins", `{"area":"Lazer","sentiment":3,"topics":["Sono"],"journal":"Semana pesada."}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = patient.do(http.MethodGet, "/api/checkins", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Checkins []map[string]interface{} `json:"checkins"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Checkins, 1)

	counselor := newClient(t, app, database.DevCounselor, database.DevPassword)

	w = counselor.do(http.MethodGet, "/api/counselor/patients/ana/checkins", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Semana pesada.")

	w = counselor.do(http.MethodPost, "/api/counselor/messages/draft", `{"patient_id":"ana"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = counselor.do(http.MethodPost, "/api/counselor/messages", `{"patient_id":"ana","text":"Estou por aqui."}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = patient.do(http.MethodGet, "/api/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Estou por aqui.")

	w = patient.do(http.MethodDelete, "/api/checkins/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
}

func TestRolesAreEnforced(t *testing.T) {
	var logs bytes.Buffer
	app := newApp(t, &logs)

	patient := newClient(t, app, database.DevPatient, database.DevPassword)
	w := patient.do(http.MethodGet, "/api/counselor/patients/ana/checkins", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	counselor := newClient(t, app, database.DevCounselor, database.DevPassword)
	w = counselor.do(http.MethodPost, "/api/checkins", `{"sentiment":5}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	anon := &client{t: t, handler: NewRouter(app)}
	w = anon.do(http.MethodGet, "/api/checkins", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewGenerator(t *testing.T) {
	cfg := testConfig()
	gen, err := NewGenerator(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, gen)

	cfg.AIProvider = config.ProviderGemini
	_, err = NewGenerator(context.Background(), cfg)
	assert.Error(t, err, "gemini needs an API key")

	cfg.AIProvider = "unknown"
	_, err = NewGenerator(context.Background(), cfg)
	assert.Error(t, err)
}

func TestDatabaseBackendWritesHeadersOnStart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.StoreBackend = config.BackendDatabase
	cfg.DatabaseURL = "sqlite://" + t.TempDir() + "/checkins.db"

	app, err := NewApp(ctx, cfg, slog.Default())
	require.NoError(t, err)
	defer app.Close()

	for table, header := range database.Headers {
		rows, err := app.Store.Read(ctx, table)
		require.NoError(t, err)
		require.Len(t, rows, 1, table)
		assert.Equal(t, header, rows[0], table)
	}

	_, ok := app.Directory.Authenticate(ctx, database.DevPatient, database.DevPassword)
	assert.False(t, ok, "persistent backends get no dev accounts on start")

	require.NoError(t, app.Directory.CreateCounselor(ctx, "drpaulo", "secret"))
	require.NoError(t, app.Directory.Create(ctx, "bia", "secret", "drpaulo"))

	patient := newClient(t, app, "bia", "secret")
	w := patient.do(http.MethodPost, "/api/checkins", `{"sentiment":7}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = patient.do(http.MethodGet, "/api/checkins", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var history struct {
		Checkins []map[string]interface{} `json:"checkins"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Checkins, 1)

	counselor := newClient(t, app, "drpaulo", "secret")
	w = counselor.do(http.MethodPost, "/api/counselor/messages", `{"patient_id":"bia","text":"Primeiro recado."}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = patient.do(http.MethodGet, "/api/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Primeiro recado.")

	w = patient.do(http.MethodDelete, "/api/checkins/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
}

func TestProductionMemoryBackendHasNoDevAccounts(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"

	app, err := NewApp(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer app.Close()

	_, ok := app.Directory.Authenticate(context.Background(), database.DevCounselor, database.DevPassword)
	assert.False(t, ok)
}

func TestSeedRefusesProductionWithoutForce(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Env = "production"
	cfg.StoreBackend = config.BackendDatabase
	cfg.DatabaseURL = "sqlite://" + t.TempDir() + "/checkins.db"

	assert.ErrorIs(t, Seed(ctx, cfg, slog.Default(), false), ErrSeedInProduction)
	require.NoError(t, Seed(ctx, cfg, slog.Default(), true))
}

func TestMigrateWritesHeaders(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.StoreBackend = config.BackendDatabase
	cfg.DatabaseURL = "sqlite://" + t.TempDir() + "/checkins.db"

	require.NoError(t, Migrate(ctx, cfg, slog.Default()))
	require.NoError(t, Migrate(ctx, cfg, slog.Default()))

	db, err := OpenDatabase(cfg.DatabaseURL, slog.Default())
	require.NoError(t, err)
	defer database.Close(db)

	rows, err := rowstore.NewDatabase(db).Read(ctx, rowstore.TableCheckins)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
