// Package state holds the session's application state as an immutable value.
// Every mutation is an Action applied by Dispatch, which returns the next
// state and a Change describing what was committed.
package state

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/refs"
)

var (
	ErrCaseNotFound      = errors.New("case not found")
	ErrReferenceNotFound = refs.ErrNotFound
	ErrUnknownTicket     = errors.New("unknown or expired confirmation ticket")
)

// State is the full in-memory dataset of a session.
type State struct {
	Cases      []model.Case
	Refs       refs.Store
	Revision   uint64
	LastUpdate int64 // epoch milliseconds
}

// Env supplies the clock and id generator used by actions.
type Env struct {
	Now   func() time.Time
	NewID func() string
}

// DefaultEnv uses the wall clock and random UUIDs.
func DefaultEnv() Env {
	return Env{Now: time.Now, NewID: uuid.NewString}
}

// FromSnapshot builds a state from a decoded snapshot.
func FromSnapshot(s model.Snapshot) State {
	s.Normalize()
	cases := make([]model.Case, len(s.Cases))
	for i, c := range s.Cases {
		cases[i] = c.Clone()
	}
	return State{Cases: cases, Refs: refs.FromSnapshot(s), LastUpdate: s.LastUpdate}
}

// Snapshot returns the persisted shape of the state.
func (s State) Snapshot() model.Snapshot {
	snap := model.Snapshot{Cases: make([]model.Case, len(s.Cases)), LastUpdate: s.LastUpdate}
	for i, c := range s.Cases {
		snap.Cases[i] = c.Clone()
	}
	s.Refs.Fill(&snap)
	return snap
}

// Find returns the case with id.
func (s State) Find(id string) (model.Case, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Case{}, false
	}
	return s.Cases[i].Clone(), true
}

func (s State) index(id string) int {
	for i, c := range s.Cases {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Count returns the number of cases per status.
func (s State) Count() map[model.Status]int {
	out := map[model.Status]int{model.StatusPending: 0, model.StatusClosed: 0}
	for _, c := range s.Cases {
		out[c.Status]++
	}
	return out
}

// Change describes one committed mutation.
type Change struct {
	Action  string
	CaseID  string
	Details string
}

// Dispatch applies a to s. On error s is returned untouched.
func Dispatch(s State, env Env, a Action) (State, Change, error) {
	if env.Now == nil || env.NewID == nil {
		d := DefaultEnv()
		if env.Now == nil {
			env.Now = d.Now
		}
		if env.NewID == nil {
			env.NewID = d.NewID
		}
	}
	next, change, err := a.apply(s.clone(), env)
	if err != nil {
		return s, Change{}, err
	}
	next.Revision = s.Revision + 1
	next.LastUpdate = env.Now().UnixMilli()
	return next, change, nil
}

func (s State) clone() State {
	out := s
	out.Cases = make([]model.Case, len(s.Cases))
	for i, c := range s.Cases {
		out.Cases[i] = c.Clone()
	}
	out.Refs = s.Refs.Clone()
	return out
}
