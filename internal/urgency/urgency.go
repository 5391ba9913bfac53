// Package urgency decides whether a pending case is approaching or past its
// earliest deadline. Results depend on the evaluation instant, so nothing is
// cached here.
package urgency

import (
	"time"

	"github.com/gestorjudicial/gestor/internal/model"
)

// DefaultThresholdDays is the warning window before the earliest deadline.
const DefaultThresholdDays = 15

const day = 24 * time.Hour

// Trigger names the deadline that determines the earliest date.
type Trigger string

const (
	TriggerReview  Trigger = "revisao"
	TriggerMaximum Trigger = "maximo"
)

// Result is the outcome for one case at one instant. Urgent and Overdue are
// independent flags: every overdue case is also urgent.
type Result struct {
	Urgent      bool
	Overdue     bool
	TriggeredBy Trigger
	// Deadline is the earliest parseable deadline; zero when neither parses.
	Deadline time.Time
	// DaysLeft is the fractional number of days from now to Deadline.
	DaysLeft float64
}

// Evaluator evaluates cases against a configurable warning window.
type Evaluator struct {
	ThresholdDays int
}

// New returns an evaluator; non-positive thresholds fall back to the default.
func New(thresholdDays int) Evaluator {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	return Evaluator{ThresholdDays: thresholdDays}
}

// Evaluate uses the default 15-day window.
func Evaluate(c model.Case, now time.Time) Result {
	return New(DefaultThresholdDays).Evaluate(c, now)
}

// Evaluate computes urgency for c at now. Closed cases are never urgent or
// overdue, but still report which deadline comes first.
func (e Evaluator) Evaluate(c model.Case, now time.Time) Result {
	res := Result{TriggeredBy: TriggeredBy(c)}

	deadline, ok := c.MinDeadline()
	if !ok {
		return res
	}
	res.Deadline = deadline
	res.DaysLeft = float64(deadline.Sub(now)) / float64(day)

	if c.Status != model.StatusPending {
		return res
	}
	threshold := e.ThresholdDays
	if threshold <= 0 {
		threshold = DefaultThresholdDays
	}
	res.Overdue = res.DaysLeft < 0
	res.Urgent = res.DaysLeft <= float64(threshold)
	return res
}

// TriggeredBy returns revisao when the review deadline is on or before the
// maximum deadline, maximo otherwise. When only one deadline parses, that
// one wins.
func TriggeredBy(c model.Case) Trigger {
	rev, revOK := c.Review()
	limit, limitOK := c.Maximum()
	switch {
	case revOK && limitOK:
		if !rev.After(limit) {
			return TriggerReview
		}
		return TriggerMaximum
	case limitOK:
		return TriggerMaximum
	}
	return TriggerReview
}

// Label is the badge text the presentation shows for a result.
func (r Result) Label() string {
	switch {
	case r.Overdue:
		return "PRAZO CRÍTICO"
	case r.Urgent:
		return "ALERTA DE PRAZO"
	}
	return ""
}
