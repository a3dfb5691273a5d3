package httpx

import (
	"net/http"

	"github.com/cardano-insights/agent-service/internal/service"
)

// AvailabilityHandlers provides the agent availability endpoint.
type AvailabilityHandlers struct {
	Svc *service.AvailabilityService
}

// Check reports whether the agent is ready to accept new jobs. The probe
// exercises the registry backend so a dead store surfaces here rather than
// on the first start_job call.
func (h *AvailabilityHandlers) Check(w http.ResponseWriter, r *http.Request) {
	resp := h.Svc.Check(r.Context())
	WriteJSON(w, http.StatusOK, resp)
}
