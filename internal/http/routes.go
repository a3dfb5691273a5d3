package httpx

import (
	"log/slog"
	"net/http"

	"github.com/cardano-insights/agent-service/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs         *service.JobService
	Availability *service.AvailabilityService
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router for the agent API.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	availabilityHandlers := &AvailabilityHandlers{Svc: services.Availability}

	mux.Handle("POST /start_job", http.HandlerFunc(jobHandlers.StartJob))
	mux.Handle("GET /status", http.HandlerFunc(jobHandlers.GetStatus))
	mux.Handle("POST /provide_input", http.HandlerFunc(jobHandlers.ProvideInput))
	mux.Handle("GET /availability", http.HandlerFunc(availabilityHandlers.Check))
	mux.Handle("GET /input_schema", http.HandlerFunc(SchemaHandler))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)

	return handler
}
