package httpx

import (
	"net/http"

	"github.com/cardano-insights/agent-service/internal/domain/model"
)

// SchemaHandler serves the static description of the fields start_job accepts.
func SchemaHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, model.DefaultInputSchema())
}
