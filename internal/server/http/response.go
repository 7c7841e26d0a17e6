package httpserver

import (
	"errors"
	"net/http"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/planner"
	"github.com/helixir/research-assistant-service/internal/research"
)

// Refusal reasons produced by the transport layer.
const (
	reasonDeprecated  = "Deprecated. Use /api/history."
	reasonInvalidBody = "Invalid request body."
)

// writeEnvelope writes an allow/refuse envelope.
func writeEnvelope(w http.ResponseWriter, statusCode int, env domain.Envelope) {
	writeJSON(w, statusCode, env)
}

// writeRefusal writes a refuse envelope with the given reason.
func writeRefusal(w http.ResponseWriter, statusCode int, reason string) {
	writeEnvelope(w, statusCode, domain.Refuse(reason))
}

// statusForOutcome maps the cause of a research outcome to an HTTP status.
// Refusals are ordinary answers; only bad input and unexpected failures get
// an error status.
func statusForOutcome(out research.Outcome) int {
	switch {
	case out.Err == nil:
		return http.StatusOK
	case errors.Is(out.Err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(out.Err, research.ErrUnexpected):
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// statusForPlan maps a planner result to an HTTP status.
func statusForPlan(res planner.Result) int {
	if errors.Is(res.Err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusOK
}
