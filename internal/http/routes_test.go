package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/mocks"
	"github.com/cardano-insights/agent-service/internal/service"
	"github.com/cardano-insights/agent-service/internal/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	head := f.do(t, http.MethodHead, "/healthz", nil)
	require.Equal(t, http.StatusOK, head.Code)
	assert.Empty(t, head.Body.String())
}

func TestInputSchemaEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	first := f.do(t, http.MethodGet, "/input_schema", nil)
	require.Equal(t, http.StatusOK, first.Code)

	var schema struct {
		InputData []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"input_data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &schema))
	require.NotEmpty(t, schema.InputData)

	ids := make([]string, 0, len(schema.InputData))
	for _, field := range schema.InputData {
		ids = append(ids, field.ID)
	}
	assert.Contains(t, ids, "html_content")
	assert.Contains(t, ids, "analysis_type")

	// Static descriptor: identical across calls.
	second := f.do(t, http.MethodGet, "/input_schema", nil)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestAvailabilityEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/availability", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, "cardano-insights-agent", body["agentIdentifier"])
}

func TestAvailabilityEndpointBackendDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	availability := service.NewAvailabilityService(service.AvailabilityServiceOptions{
		Repo:   repo,
		Agent:  config.AgentConfig{Identifier: "cardano-insights-agent"},
		Logger: testutil.NewTestLogger(),
	})
	handler := &AvailabilityHandlers{Svc: availability}

	rec := httptest.NewRecorder()
	handler.Check(rec, httptest.NewRequest(http.MethodGet, "/availability", nil))

	// Degraded state still reports 200 with an unavailable descriptor.
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["status"])
}

func TestRecoverMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := Recover(testutil.NewTestLogger())(panicking)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := Logging(testutil.NewTestLogger())(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestWriteAppErrorMasksInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New("pq: connection reset by peer"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal", body["error"])
	assert.Equal(t, "internal server error", body["message"])
}
