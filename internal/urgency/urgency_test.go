package urgency

import (
	"testing"
	"time"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/stretchr/testify/assert"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, ok := model.ParseDate(s)
	if !ok {
		t.Fatalf("bad date %q", s)
	}
	return d
}

func TestEvaluateOverdueReviewDeadline(t *testing.T) {
	c := model.Case{ReviewDeadline: "2025-01-01", MaxDeadline: "2025-06-01", Status: model.StatusPending}

	res := Evaluate(c, mustDate(t, "2025-02-01"))

	assert.Equal(t, TriggerReview, res.TriggeredBy)
	assert.True(t, res.Overdue)
	assert.True(t, res.Urgent)
	assert.Equal(t, "PRAZO CRÍTICO", res.Label())
}

func TestEvaluateClosedCaseNeverUrgent(t *testing.T) {
	c := model.Case{ReviewDeadline: "2025-01-01", MaxDeadline: "2025-06-01", Status: model.StatusClosed}

	res := Evaluate(c, mustDate(t, "2025-02-01"))

	assert.False(t, res.Overdue)
	assert.False(t, res.Urgent)
	assert.Equal(t, TriggerReview, res.TriggeredBy)
	assert.Empty(t, res.Label())
}

func TestEvaluateWindow(t *testing.T) {
	now := mustDate(t, "2025-03-01")
	tests := []struct {
		name    string
		review  string
		maximum string
		urgent  bool
		overdue bool
		trigger Trigger
	}{
		{"far away", "2025-06-01", "2025-09-01", false, false, TriggerReview},
		{"exactly fifteen days", "2025-03-16", "2025-09-01", true, false, TriggerReview},
		{"sixteen days", "2025-03-17", "2025-09-01", false, false, TriggerReview},
		{"due today", "2025-03-01", "2025-09-01", true, false, TriggerReview},
		{"maximum comes first", "2025-09-01", "2025-03-10", true, false, TriggerMaximum},
		{"tie resolves to review", "2025-03-05", "2025-03-05", true, false, TriggerReview},
		{"maximum overdue", "2025-09-01", "2025-02-27", true, true, TriggerMaximum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := model.Case{ReviewDeadline: tt.review, MaxDeadline: tt.maximum, Status: model.StatusPending}
			res := Evaluate(c, now)
			assert.Equal(t, tt.urgent, res.Urgent)
			assert.Equal(t, tt.overdue, res.Overdue)
			assert.Equal(t, tt.trigger, res.TriggeredBy)
		})
	}
}

func TestEvaluateOverdueImpliesUrgent(t *testing.T) {
	now := mustDate(t, "2025-05-20")
	for d := 0; d < 120; d++ {
		deadline := now.AddDate(0, 0, d-60).Format(model.DateLayout)
		c := model.Case{ReviewDeadline: deadline, MaxDeadline: "2030-01-01", Status: model.StatusPending}
		res := Evaluate(c, now)
		if res.Overdue {
			assert.True(t, res.Urgent, "deadline %s", deadline)
		}
		assert.Equal(t, d-60 < 0, res.Overdue, "deadline %s", deadline)
	}
}

func TestEvaluateCustomThreshold(t *testing.T) {
	c := model.Case{ReviewDeadline: "2025-03-25", MaxDeadline: "2025-09-01", Status: model.StatusPending}
	now := mustDate(t, "2025-03-01")

	assert.False(t, New(15).Evaluate(c, now).Urgent)
	assert.True(t, New(30).Evaluate(c, now).Urgent)
	assert.Equal(t, DefaultThresholdDays, New(0).ThresholdDays)
}

func TestEvaluateUnparseableDeadlines(t *testing.T) {
	now := mustDate(t, "2025-03-01")

	none := Evaluate(model.Case{Status: model.StatusPending}, now)
	assert.False(t, none.Urgent)
	assert.False(t, none.Overdue)
	assert.True(t, none.Deadline.IsZero())

	onlyMax := Evaluate(model.Case{ReviewDeadline: "soon", MaxDeadline: "2025-02-01", Status: model.StatusPending}, now)
	assert.Equal(t, TriggerMaximum, onlyMax.TriggeredBy)
	assert.True(t, onlyMax.Overdue)
}
