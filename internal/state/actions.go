package state

import (
	"fmt"
	"strings"

	"github.com/gestorjudicial/gestor/internal/model"
)

// Action is one explicit user mutation.
type Action interface {
	apply(s State, env Env) (State, Change, error)
}

// AddCase creates a pending case from a draft. New cases go first.
type AddCase struct {
	Draft model.CaseDraft
}

func (a AddCase) apply(s State, env Env) (State, Change, error) {
	if err := a.Draft.Validate(); err != nil {
		return s, Change{}, err
	}
	c := a.Draft.ApplyTo(model.Case{
		ID:        env.NewID(),
		Status:    model.StatusPending,
		CreatedAt: env.Now().UnixMilli(),
	})
	s.Cases = append([]model.Case{c}, s.Cases...)
	return s, Change{Action: "case_created", CaseID: c.ID, Details: c.Number}, nil
}

// UpdateCase replaces the editable fields of a case.
type UpdateCase struct {
	ID    string
	Draft model.CaseDraft
}

func (a UpdateCase) apply(s State, env Env) (State, Change, error) {
	i := s.index(a.ID)
	if i < 0 {
		return s, Change{}, fmt.Errorf("%s: %w", a.ID, ErrCaseNotFound)
	}
	if err := a.Draft.Validate(); err != nil {
		return s, Change{}, err
	}
	s.Cases[i] = a.Draft.ApplyTo(s.Cases[i])
	return s, Change{Action: "case_updated", CaseID: a.ID, Details: s.Cases[i].Number}, nil
}

// DuplicateCase creates a new pending case prefilled from an existing one.
// Override, when set, is applied on top of the copied fields.
type DuplicateCase struct {
	ID       string
	Override func(*model.CaseDraft)
}

func (a DuplicateCase) apply(s State, env Env) (State, Change, error) {
	i := s.index(a.ID)
	if i < 0 {
		return s, Change{}, fmt.Errorf("%s: %w", a.ID, ErrCaseNotFound)
	}
	draft := model.DraftOf(s.Cases[i])
	if a.Override != nil {
		a.Override(&draft)
	}
	next, change, err := AddCase{Draft: draft}.apply(s, env)
	if err != nil {
		return s, Change{}, err
	}
	change.Action = "case_duplicated"
	change.Details = fmt.Sprintf("%s from %s", change.Details, a.ID)
	return next, change, nil
}

// ToggleStatus flips a case between pendente and findo.
type ToggleStatus struct {
	ID string
}

func (a ToggleStatus) apply(s State, env Env) (State, Change, error) {
	i := s.index(a.ID)
	if i < 0 {
		return s, Change{}, fmt.Errorf("%s: %w", a.ID, ErrCaseNotFound)
	}
	s.Cases[i].Status = s.Cases[i].Status.Toggled()
	return s, Change{Action: "status_changed", CaseID: a.ID, Details: string(s.Cases[i].Status)}, nil
}

// DeleteCase removes a case. Callers go through Confirmations first.
type DeleteCase struct {
	ID string
}

func (a DeleteCase) apply(s State, env Env) (State, Change, error) {
	i := s.index(a.ID)
	if i < 0 {
		return s, Change{}, fmt.Errorf("%s: %w", a.ID, ErrCaseNotFound)
	}
	number := s.Cases[i].Number
	s.Cases = append(s.Cases[:i:i], s.Cases[i+1:]...)
	return s, Change{Action: "case_deleted", CaseID: a.ID, Details: number}, nil
}

// LinkDocuments attaches file names to a case. Names already linked are skipped.
type LinkDocuments struct {
	ID    string
	Names []string
}

func (a LinkDocuments) apply(s State, env Env) (State, Change, error) {
	i := s.index(a.ID)
	if i < 0 {
		return s, Change{}, fmt.Errorf("%s: %w", a.ID, ErrCaseNotFound)
	}
	s.Cases[i].Documents = s.Cases[i].Documents.Union(a.Names...)
	return s, Change{Action: "documents_linked", CaseID: a.ID, Details: strings.Join(a.Names, ", ")}, nil
}

// UnlinkDocuments detaches file names from a case.
type UnlinkDocuments struct {
	ID    string
	Names []string
}

func (a UnlinkDocuments) apply(s State, env Env) (State, Change, error) {
	i := s.index(a.ID)
	if i < 0 {
		return s, Change{}, fmt.Errorf("%s: %w", a.ID, ErrCaseNotFound)
	}
	docs := s.Cases[i].Documents
	for _, n := range a.Names {
		docs = docs.Without(n)
	}
	s.Cases[i].Documents = docs
	return s, Change{Action: "documents_unlinked", CaseID: a.ID, Details: strings.Join(a.Names, ", ")}, nil
}

// AddReference appends a reference entry with a fresh id.
type AddReference struct {
	Kind   model.Kind
	Fields model.EntryFields
}

func (a AddReference) apply(s State, env Env) (State, Change, error) {
	next, entry, err := s.Refs.Add(a.Kind, env.NewID(), a.Fields)
	if err != nil {
		return s, Change{}, err
	}
	s.Refs = next
	return s, Change{Action: "reference_added", Details: fmt.Sprintf("%s %s %q", a.Kind, entry.EntryID(), entry.Label())}, nil
}

// EditReference changes an entry in place. Cases keep the old label.
type EditReference struct {
	Kind   model.Kind
	ID     string
	Fields model.EntryFields
}

func (a EditReference) apply(s State, env Env) (State, Change, error) {
	next, err := s.Refs.Edit(a.Kind, a.ID, a.Fields)
	if err != nil {
		return s, Change{}, err
	}
	s.Refs = next
	return s, Change{Action: "reference_edited", Details: fmt.Sprintf("%s %s %q", a.Kind, a.ID, a.Fields.Label)}, nil
}

// RemoveReference deletes an entry. Cases keep its label as an external tag.
type RemoveReference struct {
	Kind model.Kind
	ID   string
}

func (a RemoveReference) apply(s State, env Env) (State, Change, error) {
	next, err := s.Refs.Remove(a.Kind, a.ID)
	if err != nil {
		return s, Change{}, err
	}
	s.Refs = next
	return s, Change{Action: "reference_removed", Details: fmt.Sprintf("%s %s", a.Kind, a.ID)}, nil
}

// Replace swaps the whole dataset, as an import does. No merge.
type Replace struct {
	Snapshot model.Snapshot
}

func (a Replace) apply(s State, env Env) (State, Change, error) {
	next := FromSnapshot(a.Snapshot)
	return next, Change{Action: "state_replaced", Details: fmt.Sprintf("%d cases", len(next.Cases))}, nil
}
