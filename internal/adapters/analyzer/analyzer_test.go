package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardano-insights/agent-service/internal/testutil"
)

func TestHTTPAnalyzerPostsJobInput(t *testing.T) {
	var received analyzeRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"keyInsights":["high fee ratio"],"alerts":[],"suggestions":[]}`))
	}))
	defer backend.Close()

	a, err := NewHTTPAnalyzer(HTTPAnalyzerOptions{URL: backend.URL})
	require.NoError(t, err)

	job := testutil.NewJob().Build()
	result, err := a.Analyze(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, job.JobID, received.JobID)
	assert.Equal(t, job.IdentifierFromPurchaser, received.IdentifierFromPurchaser)
	assert.Contains(t, received.InputData, "html_content")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(result, &doc))
	assert.Contains(t, doc, "keyInsights")
}

func TestHTTPAnalyzerNonOKStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer backend.Close()

	a, err := NewHTTPAnalyzer(HTTPAnalyzerOptions{URL: backend.URL})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), testutil.NewJob().Build())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPAnalyzerInvalidJSON(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer backend.Close()

	a, err := NewHTTPAnalyzer(HTTPAnalyzerOptions{URL: backend.URL})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), testutil.NewJob().Build())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestHTTPAnalyzerContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-blocked
	}))
	defer backend.Close()
	defer close(blocked)

	a, err := NewHTTPAnalyzer(HTTPAnalyzerOptions{URL: backend.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Analyze(ctx, testutil.NewJob().Build())
	require.Error(t, err)
}

func TestNewHTTPAnalyzerRequiresURL(t *testing.T) {
	_, err := NewHTTPAnalyzer(HTTPAnalyzerOptions{})
	require.Error(t, err)
}

func TestStaticAnalyzer(t *testing.T) {
	fixed := json.RawMessage(`{"keyInsights":[]}`)
	a := &StaticAnalyzer{Result: fixed}
	got, err := a.Analyze(context.Background(), testutil.NewJob().Build())
	require.NoError(t, err)
	assert.Equal(t, fixed, got)

	failing := &StaticAnalyzer{Err: assert.AnError}
	_, err = failing.Analyze(context.Background(), testutil.NewJob().Build())
	assert.ErrorIs(t, err, assert.AnError)
}
