// Package planner spreads a fixed set of research tasks over the days
// between now and an assignment's due date.
package planner

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/research-assistant-service/internal/classifier"
	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/observability"
)

// Refusal reasons.
const (
	ReasonMissingInput = "Please provide both a topic and a due date."
	ReasonDisallowed   = "I can’t write any part of your assignment, but I can help you plan it."
	ReasonInvalidDate  = "Invalid due date provided."
	ReasonPastDate     = "The due date must be in the future."
)

const dateLayout = "2006-01-02"

var tasks = []string{
	"Define your assignment scope and identify key questions",
	"Research academic sources and gather notes",
	"Organize notes and create a structured outline",
	"Draft your assignment based on the outline",
	"Revise, edit, and finalize your assignment",
}

var tips = []string{
	"Start early and stick to your schedule.",
	"Use credible, peer-reviewed sources and institutional repositories.",
	"Break tasks into manageable chunks and adjust as needed.",
}

// dueDateLayouts are tried in order when parsing a due date.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

// Item is one dated step of a plan.
type Item struct {
	Date  string   `json:"date"`
	Tasks []string `json:"tasks"`
}

// Result is the planner's allow/refuse answer.
type Result struct {
	Decision      domain.Decision `json:"decision"`
	RefusalReason string          `json:"refusalReason,omitempty"`
	Plan          []Item          `json:"plan,omitempty"`
	Tips          []string        `json:"tips,omitempty"`

	// Err is the typed cause of a refusal: *domain.ValidationError for bad
	// input, *domain.PolicyRefusalError for a disallowed topic.
	Err error `json:"-"`
}

func refuse(err error, reason string) Result {
	return Result{Decision: domain.DecisionRefuse, RefusalReason: reason, Err: err}
}

// Plan builds a schedule for topic due at dueDate, starting from now.
func Plan(topic, dueDate string, now time.Time) Result {
	topic = strings.TrimSpace(topic)
	dueDate = strings.TrimSpace(dueDate)

	if topic == "" || dueDate == "" {
		return refuse(domain.NewValidationError("topic", "topic and dueDate are required"), ReasonMissingInput)
	}
	if classifier.IsDisallowed(topic) {
		return refuse(domain.NewPolicyRefusalError(ReasonDisallowed), ReasonDisallowed)
	}

	due, ok := parseDueDate(dueDate)
	if !ok {
		return refuse(domain.NewValidationError("dueDate", "unparseable date"), ReasonInvalidDate)
	}
	if !due.After(now) {
		return refuse(domain.NewValidationError("dueDate", "not in the future"), ReasonPastDate)
	}

	return Result{
		Decision: domain.DecisionAllow,
		Plan:     schedule(now, due),
		Tips:     append([]string(nil), tips...),
	}
}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func schedule(start, due time.Time) []Item {
	start = start.UTC()
	due = due.UTC()

	totalDays := math.Max(1, math.Ceil(due.Sub(start).Hours()/24))
	step := totalDays / float64(len(tasks))

	items := make([]Item, len(tasks))
	for i, task := range tasks {
		date := start.AddDate(0, 0, int(math.Round(step*float64(i))))
		if date.After(due) {
			date = due
		}
		items[i] = Item{Date: date.Format(dateLayout), Tasks: []string{task}}
	}
	return items
}

// Planner wraps Plan with a clock, logging and metrics.
type Planner struct {
	now     func() time.Time
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// New creates a Planner using the wall clock. metrics may be nil.
func New(logger zerolog.Logger, metrics *observability.Metrics) *Planner {
	return &Planner{
		now:     time.Now,
		logger:  observability.WithComponent(logger, "planner"),
		metrics: metrics,
	}
}

// Create plans topic against the current time.
func (p *Planner) Create(topic, dueDate string) Result {
	res := Plan(topic, dueDate, p.now())
	p.metrics.RecordPlan(string(res.Decision))
	if res.Decision == domain.DecisionRefuse {
		p.logger.Info().Err(res.Err).Msg("plan refused")
	}
	return res
}
