// Package refs holds the reference collections (crimes, units, measures,
// prosecutors, judges, defendants). Cases point at entries by label, so
// nothing here cascades into existing cases.
package refs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gestorjudicial/gestor/internal/model"
)

var (
	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("reference entry not found")
	// ErrEmptyLabel is returned when an entry would have no primary label.
	ErrEmptyLabel = errors.New("reference label is required")
)

// Store is an immutable value holding the six reference collections.
// Every mutator returns a new Store and leaves the receiver untouched.
type Store struct {
	Crimes      []model.RefItem
	Units       []model.RefItem
	Measures    []model.RefItem
	Prosecutors []model.Person
	Judges      []model.Person
	Defendants  []model.Person
}

// FromSnapshot copies the reference collections out of a snapshot.
func FromSnapshot(s model.Snapshot) Store {
	return Store{
		Crimes:      append([]model.RefItem{}, s.Crimes...),
		Units:       append([]model.RefItem{}, s.Units...),
		Measures:    append([]model.RefItem{}, s.Measures...),
		Prosecutors: append([]model.Person{}, s.Prosecutors...),
		Judges:      append([]model.Person{}, s.Judges...),
		Defendants:  append([]model.Person{}, s.Defendants...),
	}
}

// Fill writes the collections into a snapshot.
func (s Store) Fill(snap *model.Snapshot) {
	c := s.Clone()
	snap.Crimes = c.Crimes
	snap.Units = c.Units
	snap.Measures = c.Measures
	snap.Prosecutors = c.Prosecutors
	snap.Judges = c.Judges
	snap.Defendants = c.Defendants
}

// Clone returns a copy that shares no backing arrays with s.
func (s Store) Clone() Store {
	return Store{
		Crimes:      append([]model.RefItem{}, s.Crimes...),
		Units:       append([]model.RefItem{}, s.Units...),
		Measures:    append([]model.RefItem{}, s.Measures...),
		Prosecutors: append([]model.Person{}, s.Prosecutors...),
		Judges:      append([]model.Person{}, s.Judges...),
		Defendants:  append([]model.Person{}, s.Defendants...),
	}
}

// Entries returns the collection for kind through the common Entry view.
func (s Store) Entries(kind model.Kind) []model.Entry {
	switch kind {
	case model.KindCrimes:
		return entries(s.Crimes)
	case model.KindUnits:
		return entries(s.Units)
	case model.KindMeasures:
		return entries(s.Measures)
	case model.KindProsecutors:
		return entries(s.Prosecutors)
	case model.KindJudges:
		return entries(s.Judges)
	case model.KindDefendants:
		return entries(s.Defendants)
	}
	return nil
}

// Lookup finds the first entry of kind whose label equals label exactly.
func (s Store) Lookup(kind model.Kind, label string) (model.Entry, bool) {
	for _, e := range s.Entries(kind) {
		if e.Label() == label {
			return e, true
		}
	}
	return nil, false
}

// IsExternal reports whether a case tag has no matching reference entry.
// External tags stay fully usable; presentation only marks them.
func (s Store) IsExternal(kind model.Kind, label string) bool {
	_, ok := s.Lookup(kind, label)
	return !ok
}

// Add appends a new entry with the given id.
func (s Store) Add(kind model.Kind, id string, f model.EntryFields) (Store, model.Entry, error) {
	f.Label = strings.TrimSpace(f.Label)
	if f.Label == "" {
		return s, nil, ErrEmptyLabel
	}
	out := s.Clone()
	var added model.Entry
	switch kind {
	case model.KindCrimes:
		item := model.RefItem{ID: id, Value: f.Label}
		out.Crimes = append(out.Crimes, item)
		added = item
	case model.KindMeasures:
		item := model.RefItem{ID: id, Value: f.Label}
		out.Measures = append(out.Measures, item)
		added = item
	case model.KindUnits:
		item := model.RefItem{ID: id, Value: f.Label, Phone: f.Phone}
		out.Units = append(out.Units, item)
		added = item
	case model.KindProsecutors:
		p := model.Person{ID: id, Name: f.Label, Phone: f.Phone, Email: f.Email}
		out.Prosecutors = append(out.Prosecutors, p)
		added = p
	case model.KindJudges:
		p := model.Person{ID: id, Name: f.Label, Phone: f.Phone, Email: f.Email}
		out.Judges = append(out.Judges, p)
		added = p
	case model.KindDefendants:
		p := model.Person{ID: id, Name: f.Label, TaxID: f.TaxID}
		out.Defendants = append(out.Defendants, p)
		added = p
	default:
		return s, nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	return out, added, nil
}

// Edit replaces the label and secondary fields of an entry in place.
func (s Store) Edit(kind model.Kind, id string, f model.EntryFields) (Store, error) {
	f.Label = strings.TrimSpace(f.Label)
	if f.Label == "" {
		return s, ErrEmptyLabel
	}
	out := s.Clone()
	var ok bool
	switch kind {
	case model.KindCrimes, model.KindMeasures, model.KindUnits:
		list := out.items(kind)
		*list, ok = update(*list, id, func(r model.RefItem) model.RefItem {
			r.Value = f.Label
			if kind == model.KindUnits {
				r.Phone = f.Phone
			}
			return r
		})
	case model.KindProsecutors, model.KindJudges, model.KindDefendants:
		list := out.people(kind)
		*list, ok = update(*list, id, func(p model.Person) model.Person {
			p.Name = f.Label
			if kind == model.KindDefendants {
				p.TaxID = f.TaxID
			} else {
				p.Phone = f.Phone
				p.Email = f.Email
			}
			return p
		})
	default:
		return s, fmt.Errorf("unknown reference kind %q", kind)
	}
	if !ok {
		return s, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return out, nil
}

// Remove deletes an entry. Cases carrying its label keep it as an external tag.
func (s Store) Remove(kind model.Kind, id string) (Store, error) {
	out := s.Clone()
	var ok bool
	switch kind {
	case model.KindCrimes, model.KindMeasures, model.KindUnits:
		list := out.items(kind)
		*list, ok = remove(*list, id)
	case model.KindProsecutors, model.KindJudges, model.KindDefendants:
		list := out.people(kind)
		*list, ok = remove(*list, id)
	default:
		return s, fmt.Errorf("unknown reference kind %q", kind)
	}
	if !ok {
		return s, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return out, nil
}

// Emails returns the e-mail addresses of the people of kind whose names are in labels.
func (s Store) Emails(kind model.Kind, labels []string) []string {
	var out []string
	if !kind.IsPerson() {
		return out
	}
	for _, p := range *s.people(kind) {
		if p.Email == "" {
			continue
		}
		if model.StringList(labels).Contains(p.Name) {
			out = append(out, p.Email)
		}
	}
	return out
}

func (s *Store) items(kind model.Kind) *[]model.RefItem {
	switch kind {
	case model.KindCrimes:
		return &s.Crimes
	case model.KindUnits:
		return &s.Units
	default:
		return &s.Measures
	}
}

func (s *Store) people(kind model.Kind) *[]model.Person {
	switch kind {
	case model.KindProsecutors:
		return &s.Prosecutors
	case model.KindJudges:
		return &s.Judges
	default:
		return &s.Defendants
	}
}

func entries[T model.Entry](items []T) []model.Entry {
	out := make([]model.Entry, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return out
}

func update[T model.Entry](items []T, id string, fn func(T) T) ([]T, bool) {
	for i, it := range items {
		if it.EntryID() == id {
			items[i] = fn(it)
			return items, true
		}
	}
	return items, false
}

func remove[T model.Entry](items []T, id string) ([]T, bool) {
	for i, it := range items {
		if it.EntryID() == id {
			return append(items[:i:i], items[i+1:]...), true
		}
	}
	return items, false
}
