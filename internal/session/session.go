// Package session wires one user session: the application state, the
// snapshot slot it is persisted to, the document resolver, the cached view
// and the audit trail. Every committed mutation is saved before it becomes
// visible.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/state"
	"github.com/gestorjudicial/gestor/internal/store"
	"github.com/gestorjudicial/gestor/internal/urgency"
)

// ErrCorruptSlot means the stored snapshot could not be decoded. Nothing is
// overwritten; the user can import a backup or reset the slot.
var ErrCorruptSlot = errors.New("stored snapshot is not valid JSON")

// Auditor records committed mutations.
type Auditor interface {
	LogCaseAction(ctx context.Context, a store.CaseAction) error
}

// Options configures Open. Only Slot is required.
type Options struct {
	Slot      store.Slot
	Audit     Auditor
	Resolver  *docs.Resolver
	View      *pipeline.View
	Evaluator urgency.Evaluator
	Env       state.Env
	Logger    *zap.SugaredLogger
	Actor     string
}

// Session is the state holder of one running instance.
type Session struct {
	slot      store.Slot
	audit     Auditor
	resolver  *docs.Resolver
	view      *pipeline.View
	evaluator urgency.Evaluator
	env       state.Env
	log       *zap.SugaredLogger
	actor     string

	mu      sync.Mutex
	st      state.State
	confirm *state.Confirmations
}

// Open loads the snapshot from the slot. An empty slot starts an empty dataset.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Slot == nil {
		return nil, errors.New("session: no snapshot slot")
	}
	s := &Session{
		slot:      opts.Slot,
		audit:     opts.Audit,
		resolver:  opts.Resolver,
		view:      opts.View,
		evaluator: opts.Evaluator,
		env:       opts.Env,
		log:       opts.Logger,
		actor:     opts.Actor,
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.resolver == nil {
		s.resolver = docs.NewResolver(s.log)
	}
	if s.view == nil {
		s.view = pipeline.NewView(0)
	}
	if s.evaluator.ThresholdDays <= 0 {
		s.evaluator = urgency.New(urgency.DefaultThresholdDays)
	}
	if s.env.Now == nil || s.env.NewID == nil {
		def := state.DefaultEnv()
		if s.env.Now == nil {
			s.env.Now = def.Now
		}
		if s.env.NewID == nil {
			s.env.NewID = def.NewID
		}
	}
	if s.actor == "" {
		s.actor = "local"
	}
	s.confirm = state.NewConfirmations(s.env.NewID)

	data, ok, err := s.slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if ok && len(data) > 0 {
		snap, err := model.DecodeSnapshot(data)
		if err != nil {
			return nil, fmt.Errorf("%w (%s): %v", ErrCorruptSlot, s.slot.Describe(), err)
		}
		s.st = state.FromSnapshot(snap)
	}
	s.log.Infow("session opened", "slot", s.slot.Describe(), "cases", len(s.st.Cases))
	return s, nil
}

// Close releases the slot.
func (s *Session) Close() error {
	return s.slot.Close()
}

// State returns the current state value. It is never mutated afterwards.
func (s *Session) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Resolver returns the document resolver of the session.
func (s *Session) Resolver() *docs.Resolver {
	return s.resolver
}

// Evaluator returns the urgency evaluator in use.
func (s *Session) Evaluator() urgency.Evaluator {
	return s.evaluator
}

// Now returns the session clock.
func (s *Session) Now() time.Time {
	return s.env.Now()
}

// Dispatch applies a, saves the resulting snapshot and only then publishes
// the new state. A failed save leaves the previous state in place.
func (s *Session) Dispatch(ctx context.Context, a state.Action) (state.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, a)
}

func (s *Session) dispatchLocked(ctx context.Context, a state.Action) (state.Change, error) {
	next, change, err := state.Dispatch(s.st, s.env, a)
	if err != nil {
		return state.Change{}, err
	}

	data, err := next.Snapshot().Encode()
	if err != nil {
		return state.Change{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.log.Errorw("snapshot not saved", "action", change.Action, "error", err)
		return state.Change{}, fmt.Errorf("save snapshot: %w", err)
	}
	s.st = next
	s.view.Invalidate()

	s.log.Infow("committed", "action", change.Action, "case", change.CaseID, "revision", next.Revision)
	s.record(ctx, change, next.Revision)
	return change, nil
}

func (s *Session) record(ctx context.Context, change state.Change, revision uint64) {
	if s.audit == nil {
		return
	}
	err := s.audit.LogCaseAction(ctx, store.CaseAction{
		CaseID:   change.CaseID,
		Action:   change.Action,
		Actor:    s.actor,
		Summary:  change.Details,
		Revision: revision,
		Slot:     s.slot.Describe(),
		At:       s.env.Now(),
	})
	if err != nil {
		s.log.Warnw("audit entry not written", "action", change.Action, "error", err)
	}
}

// Import replaces the whole dataset with snap.
func (s *Session) Import(ctx context.Context, snap model.Snapshot) (state.Change, error) {
	return s.Dispatch(ctx, state.Replace{Snapshot: snap})
}

// Snapshot returns the persisted shape of the current state.
func (s *Session) Snapshot() model.Snapshot {
	return s.State().Snapshot()
}
