package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a case.
type Status string

const (
	StatusPending Status = "pendente"
	StatusClosed  Status = "findo"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusClosed
}

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusPending {
		return StatusClosed
	}
	return StatusPending
}

// ParseStatus accepts the stored values plus a few English aliases used on the command line.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pendente", "pendentes", "pending", "open":
		return StatusPending, nil
	case "findo", "findos", "closed", "done":
		return StatusClosed, nil
	}
	return "", fmt.Errorf("unknown status %q (use pendente or findo)", s)
}

// DateLayout is the storage layout of deadline fields.
const DateLayout = "2006-01-02"

// Case represents a tracked legal proceeding ("processo").
type Case struct {
	ID              string     `json:"id"`
	Number          string     `json:"numeroProcesso"`
	Crimes          StringList `json:"crime"`
	Measures        StringList `json:"medidasAplicadas"`
	ReviewDeadline  string     `json:"prazoRevisao"`
	MaxDeadline     string     `json:"prazoMaximo"`
	Defendants      StringList `json:"arguidos"`
	Comments        string     `json:"comentarios"`
	Units           StringList `json:"diap"`
	Prosecutors     StringList `json:"nomeProcurador"`
	Judges          StringList `json:"juiz"`
	ProsecutorPhone string     `json:"telefoneProcurador"`
	Documents       StringList `json:"documentosRelacionados"`
	Status          Status     `json:"status"`
	CreatedAt       int64      `json:"createdAt"` // epoch milliseconds
}

// UnmarshalJSON decodes a case and normalizes legacy shapes. Missing or
// unknown status values are read as pending.
func (c *Case) UnmarshalJSON(data []byte) error {
	type plain Case
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Case(p)
	if !c.Status.Valid() {
		c.Status = StatusPending
	}
	return nil
}

// Created returns the creation instant.
func (c Case) Created() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// Review returns the parsed review deadline.
func (c Case) Review() (time.Time, bool) {
	return ParseDate(c.ReviewDeadline)
}

// Maximum returns the parsed maximum-duration deadline.
func (c Case) Maximum() (time.Time, bool) {
	return ParseDate(c.MaxDeadline)
}

// MinDeadline returns the earliest of the two deadlines. Unparseable
// deadlines are ignored; ok is false only when neither parses.
func (c Case) MinDeadline() (time.Time, bool) {
	rev, revOK := c.Review()
	limit, limitOK := c.Maximum()
	switch {
	case revOK && limitOK:
		if limit.Before(rev) {
			return limit, true
		}
		return rev, true
	case revOK:
		return rev, true
	case limitOK:
		return limit, true
	}
	return time.Time{}, false
}

// Tags returns the classification list held by the case for a reference kind.
func (c Case) Tags(kind Kind) []string {
	switch kind {
	case KindCrimes:
		return c.Crimes
	case KindUnits:
		return c.Units
	case KindMeasures:
		return c.Measures
	case KindProsecutors:
		return c.Prosecutors
	case KindJudges:
		return c.Judges
	case KindDefendants:
		return c.Defendants
	}
	return nil
}

// Clone returns a deep copy so snapshots never share list backing arrays.
func (c Case) Clone() Case {
	out := c
	out.Crimes = c.Crimes.Clone()
	out.Measures = c.Measures.Clone()
	out.Defendants = c.Defendants.Clone()
	out.Units = c.Units.Clone()
	out.Prosecutors = c.Prosecutors.Clone()
	out.Judges = c.Judges.Clone()
	out.Documents = c.Documents.Clone()
	return out
}

// ParseDate parses a calendar date. Full RFC 3339 timestamps written by
// older exports are accepted as well.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// FormatDate renders a stored date the way Portuguese reports show it (dd/mm/yyyy).
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("02/01/2006")
}
