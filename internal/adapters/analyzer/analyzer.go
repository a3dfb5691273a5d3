// Package analyzer provides clients for the insights analysis backend.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cardano-insights/agent-service/internal/domain/model"
)

// Analyzer produces an analysis result document for a running job.
type Analyzer interface {
	Analyze(ctx context.Context, job *model.Job) (json.RawMessage, error)
}

// analyzeRequest is the payload sent to the analysis backend.
type analyzeRequest struct {
	JobID                   string         `json:"job_id"`
	IdentifierFromPurchaser string         `json:"identifierFromPurchaser"`
	InputData               map[string]any `json:"input_data"`
}

// HTTPAnalyzer calls an HTTP analysis backend that accepts job input and
// returns an insights document (keyInsights, alerts, suggestions).
type HTTPAnalyzer struct {
	url    string
	client *http.Client
}

// HTTPAnalyzerOptions holds the dependencies for creating an HTTPAnalyzer.
type HTTPAnalyzerOptions struct {
	URL string
	// Client is optional; http.DefaultClient is used when nil. Callers should
	// supply a client with a timeout matching their runner configuration.
	Client *http.Client
}

// NewHTTPAnalyzer creates an analyzer backed by an HTTP endpoint.
func NewHTTPAnalyzer(opts HTTPAnalyzerOptions) (*HTTPAnalyzer, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("analyzer backend URL is required")
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAnalyzer{url: opts.URL, client: client}, nil
}

// maxResultBytes bounds how much of a backend response is read. Insights
// documents are small; anything beyond this indicates a misbehaving backend.
const maxResultBytes = 4 << 20

// Analyze posts the job input to the backend and returns the raw result body.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, job *model.Job) (json.RawMessage, error) {
	payload, err := json.Marshal(analyzeRequest{
		JobID:                   job.JobID,
		IdentifierFromPurchaser: job.IdentifierFromPurchaser,
		InputData:               job.InputData,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResultBytes))
	if err != nil {
		return nil, fmt.Errorf("read analyze response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyze backend returned status %d", resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("analyze backend returned invalid JSON")
	}

	return json.RawMessage(body), nil
}

// StaticAnalyzer returns a fixed result or error. Useful in tests and as a
// stand-in when no backend is configured in development.
type StaticAnalyzer struct {
	Result json.RawMessage
	Err    error
}

func (a *StaticAnalyzer) Analyze(_ context.Context, _ *model.Job) (json.RawMessage, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Result, nil
}
