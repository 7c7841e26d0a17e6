package planner

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/observability"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func dates(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Date
	}
	return out
}

func TestPlan_SpreadsTasks(t *testing.T) {
	res := Plan("French Revolution historiography", "2026-10-25", now)

	require.Equal(t, domain.DecisionAllow, res.Decision)
	require.NoError(t, res.Err)
	require.Len(t, res.Plan, len(tasks))
	assert.Equal(t, []string{"2026-10-15", "2026-10-17", "2026-10-19", "2026-10-21", "2026-10-23"}, dates(res.Plan))
	assert.Equal(t, []string{"Define your assignment scope and identify key questions"}, res.Plan[0].Tasks)
	assert.Equal(t, []string{"Revise, edit, and finalize your assignment"}, res.Plan[4].Tasks)
	assert.Len(t, res.Tips, 3)
	assert.Empty(t, res.RefusalReason)
}

func TestPlan_ClampsToDueDate(t *testing.T) {
	res := Plan("Meiji Restoration", "2026-10-15T13:00:00Z", now)

	require.Equal(t, domain.DecisionAllow, res.Decision)
	require.Len(t, res.Plan, 5)
	for _, d := range dates(res.Plan) {
		assert.Equal(t, "2026-10-15", d)
	}
}

func TestPlan_LastItemNeverAfterDueDate(t *testing.T) {
	for days := 1; days <= 40; days++ {
		due := now.AddDate(0, 0, days)
		res := Plan("x", due.Format(time.RFC3339), now)
		require.Equal(t, domain.DecisionAllow, res.Decision)
		last := res.Plan[len(res.Plan)-1].Date
		assert.LessOrEqual(t, last, due.Format("2006-01-02"), "days=%d", days)
	}
}

func TestPlan_Refusals(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		due     string
		reason  string
		wantErr error
	}{
		{"missing topic", "  ", "2026-11-01", ReasonMissingInput, domain.ErrInvalidInput},
		{"missing due date", "Rome", "", ReasonMissingInput, domain.ErrInvalidInput},
		{"writing request", "write my essay on the fall of Rome", "2026-11-01", ReasonDisallowed, domain.ErrPolicyRefusal},
		{"invalid date", "Rome", "next friday", ReasonInvalidDate, domain.ErrInvalidInput},
		{"past date", "Rome", "2026-10-14", ReasonPastDate, domain.ErrInvalidInput},
		{"now is not future", "Rome", now.Format(time.RFC3339), ReasonPastDate, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Plan(tt.topic, tt.due, now)
			assert.Equal(t, domain.DecisionRefuse, res.Decision)
			assert.Equal(t, tt.reason, res.RefusalReason)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.Empty(t, res.Plan)
			assert.Empty(t, res.Tips)
		})
	}
}

func TestParseDueDate(t *testing.T) {
	for _, s := range []string{"2026-12-01", "2026-12-01T09:30", "2026-12-01T09:30:00", "2026-12-01T09:30:00+02:00", "2026-12-01T09:30:00.123Z"} {
		_, ok := parseDueDate(s)
		assert.True(t, ok, s)
	}
	_, ok := parseDueDate("12/01/2026")
	assert.False(t, ok)
}

func TestResult_JSON(t *testing.T) {
	b, err := json.Marshal(Plan("", "", now))
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"refuse","refusalReason":"Please provide both a topic and a due date."}`, string(b))

	b, err = json.Marshal(Plan("Rome", "2026-10-25", now))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "allow", decoded["decision"])
	assert.NotContains(t, decoded, "refusalReason")
	assert.Len(t, decoded["plan"], 5)
}

func TestPlanner_Create(t *testing.T) {
	m := observability.NewMetrics("test_planner_create")
	p := New(zerolog.Nop(), m)
	p.now = func() time.Time { return now }

	assert.Equal(t, domain.DecisionAllow, p.Create("Rome", "2026-10-25").Decision)
	assert.Equal(t, domain.DecisionRefuse, p.Create("Rome", "2020-01-01").Decision)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlansCreated.WithLabelValues("allow")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlansCreated.WithLabelValues("refuse")))
}
