package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/observability"
	"github.com/helixir/research-assistant-service/internal/research"
)

// historyRequest is the JSON request body for POST /api/history.
type historyRequest struct {
	Topic    string           `json:"topic" validate:"max=2000"`
	Depth    string           `json:"depth" validate:"max=16"`
	Messages []historyMessage `json:"messages" validate:"max=100,dive"`
}

type historyMessage struct {
	Role    string `json:"role" validate:"omitempty,oneof=user assistant system"`
	Content string `json:"content" validate:"max=8000"`
}

// plannerRequest is the JSON request body for POST /api/planner.
type plannerRequest struct {
	Topic   string `json:"topic" validate:"max=2000"`
	DueDate string `json:"dueDate" validate:"max=64"`
}

// postHistory handles POST /api/history.
func (s *Server) postHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.research(w, r, req)
}

// getHistory handles GET /api/history?topic=&depth=.
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := historyRequest{Topic: q.Get("topic"), Depth: q.Get("depth")}
	if !s.validateRequest(w, r, &req) {
		return
	}
	s.research(w, r, req)
}

func (s *Server) research(w http.ResponseWriter, r *http.Request, req historyRequest) {
	messages := make([]research.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = research.Message{Role: m.Role, Content: m.Content}
	}

	out := s.researcher.Research(r.Context(), research.Request{
		Topic:    req.Topic,
		Depth:    domain.ParseDepth(req.Depth),
		Messages: messages,
	})
	writeEnvelope(w, statusForOutcome(out), out.Envelope)
}

// deprecatedResearch answers the retired /api/research route.
func deprecatedResearch(w http.ResponseWriter, _ *http.Request) {
	writeRefusal(w, http.StatusGone, reasonDeprecated)
}

// postPlanner handles POST /api/planner.
func (s *Server) postPlanner(w http.ResponseWriter, r *http.Request) {
	var req plannerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.plan(w, req)
}

// getPlanner handles GET /api/planner?topic=&dueDate=.
func (s *Server) getPlanner(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := plannerRequest{Topic: q.Get("topic"), DueDate: q.Get("dueDate")}
	if !s.validateRequest(w, r, &req) {
		return
	}
	s.plan(w, req)
}

func (s *Server) plan(w http.ResponseWriter, req plannerRequest) {
	res := s.planner.Create(req.Topic, req.DueDate)
	writeJSON(w, statusForPlan(res), res)
}

// decodeBody reads a JSON body into v and validates it. An empty body
// decodes as the zero value. On failure a 400 refusal is written and false
// is returned.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		logger := observability.LoggerFromContext(r.Context(), s.logger)
		logger.Debug().Err(err).Msg("invalid request body")
		writeRefusal(w, http.StatusBadRequest, reasonInvalidBody)
		return false
	}
	return s.validateRequest(w, r, v)
}

// validateRequest runs struct validation on v.
func (s *Server) validateRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	err := s.validate.Struct(v)
	if err == nil {
		return true
	}

	reason := reasonInvalidBody
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		reason = describeFieldError(verrs[0])
	}
	logger := observability.LoggerFromContext(r.Context(), s.logger)
	logger.Debug().Err(err).Msg("request failed validation")
	writeRefusal(w, http.StatusBadRequest, reason)
	return false
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "max":
		unit := "items"
		if fe.Kind() == reflect.String {
			unit = "characters"
		}
		return fmt.Sprintf("Invalid %s: must be at most %s %s.", field, fe.Param(), unit)
	case "oneof":
		return fmt.Sprintf("Invalid %s: must be one of %s.", field, fe.Param())
	default:
		return fmt.Sprintf("Invalid %s.", field)
	}
}

// jsonFieldName makes validation errors use JSON field names.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
