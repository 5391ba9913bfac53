package session

import (
	"context"
	"fmt"
	"time"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/state"
	"github.com/gestorjudicial/gestor/internal/urgency"
)

// Row is one visible case with its urgency at the time of the query.
type Row struct {
	Case    model.Case
	Urgency urgency.Result
}

// View returns the filtered, deadline-ordered cases of one status.
func (s *Session) View(status model.Status, f pipeline.Filters) []model.Case {
	st := s.State()
	return s.view.Apply(st.Revision, st.Cases, status, f)
}

// Rows is View plus a fresh urgency evaluation per case.
func (s *Session) Rows(status model.Status, f pipeline.Filters) []Row {
	now := s.env.Now()
	list := s.View(status, f)
	rows := make([]Row, len(list))
	for i, c := range list {
		rows[i] = Row{Case: c, Urgency: s.evaluator.Evaluate(c, now)}
	}
	return rows
}

// OnDate returns the pending cases with a deadline on day.
func (s *Session) OnDate(day time.Time) (reviews, maximums []model.Case) {
	return pipeline.OnDate(s.View(model.StatusPending, pipeline.Filters{}), day.Format(model.DateLayout))
}

// Case returns one case by id.
func (s *Session) Case(id string) (model.Case, error) {
	c, ok := s.State().Find(id)
	if !ok {
		return model.Case{}, fmt.Errorf("%s: %w", id, state.ErrCaseNotFound)
	}
	return c, nil
}

// RequestDelete opens a confirmation for deleting a case.
func (s *Session) RequestDelete(id string) (state.Pending, error) {
	c, err := s.Case(id)
	if err != nil {
		return state.Pending{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirm.Request(state.DeleteCase{ID: id}, fmt.Sprintf("Eliminar o processo %s?", c.Number)), nil
}

// Confirm runs the action behind ticket.
func (s *Session) Confirm(ctx context.Context, ticket string) (state.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.confirm.Take(ticket)
	if err != nil {
		return state.Change{}, err
	}
	return s.dispatchLocked(ctx, a)
}

// Cancel drops a pending confirmation.
func (s *Session) Cancel(ticket string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirm.Cancel(ticket)
}

// OpenDocument resolves a logical file name through the current binding.
func (s *Session) OpenDocument(ctx context.Context, name string) (*docs.Document, error) {
	return s.resolver.Resolve(ctx, name)
}

// MissingDocuments lists the linked documents of a case that do not resolve.
func (s *Session) MissingDocuments(ctx context.Context, id string) ([]docs.Missing, error) {
	c, err := s.Case(id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Check(ctx, c.Documents)
}
