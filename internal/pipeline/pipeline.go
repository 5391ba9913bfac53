// Package pipeline derives the visible case list: status view, substring
// filters and ascending order by earliest deadline.
package pipeline

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/gestorjudicial/gestor/internal/model"
)

// Filters holds the six free-text filters. Empty values impose no constraint.
type Filters struct {
	Number     string `json:"numeroProcesso"`
	Crime      string `json:"crime"`
	Defendant  string `json:"arguido"`
	Unit       string `json:"diap"`
	Prosecutor string `json:"procurador"`
	Measure    string `json:"medida"`
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// key is a stable identity for cache lookups.
func (f Filters) key() string {
	return strings.Join([]string{f.Number, f.Crime, f.Defendant, f.Unit, f.Prosecutor, f.Measure}, "\x1f")
}

// Apply keeps the cases in the given status that satisfy every non-empty
// filter and sorts them by earliest deadline. The sort is stable, so cases
// with equal deadlines keep their input order; cases with no parseable
// deadline go last. The input slice is not modified.
func Apply(all []model.Case, status model.Status, f Filters) []model.Case {
	m := newMatcher(f)
	out := make([]model.Case, 0, len(all))
	for _, c := range all {
		if c.Status != status {
			continue
		}
		if !m.match(c) {
			continue
		}
		out = append(out, c)
	}
	SortByDeadline(out)
	return out
}

// SortByDeadline orders cases ascending by the earlier of their two deadlines.
func SortByDeadline(list []model.Case) {
	sort.SliceStable(list, func(i, j int) bool {
		a, aok := list[i].MinDeadline()
		b, bok := list[j].MinDeadline()
		switch {
		case aok && bok:
			return a.Before(b)
		case aok:
			return true
		}
		return false
	})
}

// OnDate returns the cases whose review and maximum deadlines fall on date
// (YYYY-MM-DD). Used by calendar presentations.
func OnDate(list []model.Case, date string) (reviews, maximums []model.Case) {
	for _, c := range list {
		if c.ReviewDeadline == date {
			reviews = append(reviews, c)
		}
		if c.MaxDeadline == date {
			maximums = append(maximums, c)
		}
	}
	return reviews, maximums
}

type matcher struct {
	number, crime, defendant, unit, prosecutor, measure string
}

func newMatcher(f Filters) matcher {
	return matcher{
		number:     fold(f.Number),
		crime:      fold(f.Crime),
		defendant:  fold(f.Defendant),
		unit:       fold(f.Unit),
		prosecutor: fold(f.Prosecutor),
		measure:    fold(f.Measure),
	}
}

func (m matcher) match(c model.Case) bool {
	return (m.number == "" || strings.Contains(fold(c.Number), m.number)) &&
		anyContains(c.Crimes, m.crime) &&
		anyContains(c.Defendants, m.defendant) &&
		anyContains(c.Units, m.unit) &&
		anyContains(c.Prosecutors, m.prosecutor) &&
		anyContains(c.Measures, m.measure)
}

// anyContains is true for an empty needle; otherwise at least one element
// must contain it. An empty list never matches a non-empty needle.
func anyContains(values []string, needle string) bool {
	if needle == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(fold(v), needle) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}
