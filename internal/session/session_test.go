package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/state"
	"github.com/gestorjudicial/gestor/internal/store"
)

type memSlot struct {
	data    []byte
	saved   int
	failing bool
}

func (m *memSlot) Load(ctx context.Context) ([]byte, bool, error) {
	return m.data, m.data != nil, nil
}

func (m *memSlot) Save(ctx context.Context, data []byte) error {
	if m.failing {
		return errors.New("disk full")
	}
	m.data = append([]byte(nil), data...)
	m.saved++
	return nil
}

func (m *memSlot) Clear(ctx context.Context) error { m.data = nil; return nil }
func (m *memSlot) Describe() string               { return "mem" }
func (m *memSlot) Close() error                   { return nil }

func fixedEnv() state.Env {
	n := 0
	return state.Env{
		Now: func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func openTest(t *testing.T, slot store.Slot, audit Auditor) *Session {
	t.Helper()
	s, err := Open(context.Background(), Options{Slot: slot, Audit: audit, Env: fixedEnv()})
	require.NoError(t, err)
	return s
}

func addCase(t *testing.T, s *Session, number, review, maximum string, defendants ...string) string {
	t.Helper()
	ch, err := s.Dispatch(context.Background(), state.AddCase{Draft: model.CaseDraft{
		Number: number, ReviewDeadline: review, MaxDeadline: maximum, Defendants: defendants,
	}})
	require.NoError(t, err)
	return ch.CaseID
}

func TestDispatchPersistsEveryCommit(t *testing.T) {
	slot := &memSlot{}
	s := openTest(t, slot, nil)

	id := addCase(t, s, "1/24", "2025-01-01", "2025-06-01", "João Silva")
	_, err := s.Dispatch(context.Background(), state.ToggleStatus{ID: id})
	require.NoError(t, err)
	assert.Equal(t, 2, slot.saved)

	reopened := openTest(t, slot, nil)
	c, err := reopened.Case(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, c.Status)
	assert.Equal(t, model.StringList{"João Silva"}, c.Defendants)
}

func TestFailedSaveKeepsState(t *testing.T) {
	slot := &memSlot{}
	s := openTest(t, slot, nil)
	addCase(t, s, "1/24", "2025-01-01", "2025-06-01")

	slot.failing = true
	_, err := s.Dispatch(context.Background(), state.AddCase{Draft: model.CaseDraft{
		Number: "2/24", ReviewDeadline: "2025-01-01", MaxDeadline: "2025-06-01",
	}})
	require.Error(t, err)
	assert.Len(t, s.State().Cases, 1)
	assert.Equal(t, uint64(1), s.State().Revision)
}

func TestCorruptSlot(t *testing.T) {
	_, err := Open(context.Background(), Options{Slot: &memSlot{data: []byte("{nope")}})
	assert.True(t, errors.Is(err, ErrCorruptSlot))
}

func TestRowsScenario(t *testing.T) {
	s := openTest(t, &memSlot{}, nil)
	addCase(t, s, "A", "2025-01-01", "2025-06-01", "João Silva")
	addCase(t, s, "B", "2025-05-01", "2025-04-01", "Maria Costa")

	rows := s.Rows(model.StatusPending, pipeline.Filters{})
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Case.Number)
	assert.True(t, rows[0].Urgency.Overdue)
	assert.True(t, rows[0].Urgency.Urgent)
	assert.False(t, rows[1].Urgency.Urgent)

	rows = s.Rows(model.StatusPending, pipeline.Filters{Defendant: "silva"})
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Case.Number)

	assert.Empty(t, s.Rows(model.StatusClosed, pipeline.Filters{}))
}

func TestViewTracksMutations(t *testing.T) {
	s := openTest(t, &memSlot{}, nil)
	id := addCase(t, s, "A", "2025-03-01", "2025-06-01")
	require.Len(t, s.View(model.StatusPending, pipeline.Filters{}), 1)

	require.Equal(t, 1, s.view.Stats().Size)

	_, err := s.Dispatch(context.Background(), state.ToggleStatus{ID: id})
	require.NoError(t, err)
	assert.Equal(t, 0, s.view.Stats().Size, "commit drops cached views")
	assert.Empty(t, s.View(model.StatusPending, pipeline.Filters{}))
	assert.Len(t, s.View(model.StatusClosed, pipeline.Filters{}), 1)
}

func TestDeleteProtocol(t *testing.T) {
	slot := &memSlot{}
	s := openTest(t, slot, nil)
	id := addCase(t, s, "A", "2025-03-01", "2025-06-01")

	p, err := s.RequestDelete(id)
	require.NoError(t, err)
	assert.Contains(t, p.Summary, "A")
	assert.Len(t, s.State().Cases, 1)

	assert.True(t, s.Cancel(p.Ticket))
	_, err = s.Confirm(context.Background(), p.Ticket)
	assert.True(t, errors.Is(err, state.ErrUnknownTicket))

	p, err = s.RequestDelete(id)
	require.NoError(t, err)
	_, err = s.Confirm(context.Background(), p.Ticket)
	require.NoError(t, err)
	assert.Empty(t, s.State().Cases)

	_, err = s.RequestDelete("missing")
	assert.True(t, errors.Is(err, state.ErrCaseNotFound))
}

func TestAuditTrail(t *testing.T) {
	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	defer st.Close()

	s := openTest(t, st.Slot(store.DefaultSlotKey), st)
	id := addCase(t, s, "A", "2025-03-01", "2025-06-01")
	_, err = s.Dispatch(context.Background(), state.ToggleStatus{ID: id})
	require.NoError(t, err)

	entries, err := st.GetAuditEntries(context.Background(), id, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	actions := []string{entries[0].Action, entries[1].Action}
	assert.ElementsMatch(t, []string{"case_created", "status_changed"}, actions)
	assert.Equal(t, "local", entries[0].Actor)
	assert.NotEmpty(t, entries[0].Metadata["revision"])
	assert.Equal(t, st.Slot(store.DefaultSlotKey).Describe(), entries[0].Metadata["slot"])
	assert.NotEmpty(t, entries[0].Details["summary"])
}

func TestImportReplacesEverything(t *testing.T) {
	s := openTest(t, &memSlot{}, nil)
	addCase(t, s, "old", "2025-03-01", "2025-06-01")

	_, err := s.Import(context.Background(), model.Snapshot{
		Cases: []model.Case{{ID: "x", Number: "new", Status: model.StatusPending}},
	})
	require.NoError(t, err)
	require.Len(t, s.State().Cases, 1)
	assert.Equal(t, "new", s.State().Cases[0].Number)
}

func TestMissingDocuments(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/pasta/despacho.pdf", []byte("x"), 0o644))

	s := openTest(t, &memSlot{}, nil)
	id := addCase(t, s, "A", "2025-03-01", "2025-06-01")
	_, err := s.Dispatch(context.Background(), state.LinkDocuments{ID: id, Names: []string{"despacho.pdf", "acusacao.pdf"}})
	require.NoError(t, err)

	_, err = s.MissingDocuments(context.Background(), id)
	assert.True(t, errors.Is(err, docs.ErrNoBinding))

	m, err := docs.ScanFiles(fs, "/pasta", ".pdf")
	require.NoError(t, err)
	s.Resolver().Bind(m)

	missing, err := s.MissingDocuments(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "acusacao.pdf", missing[0].Name)

	doc, err := s.OpenDocument(context.Background(), "despacho.pdf")
	require.NoError(t, err)
	assert.Equal(t, "despacho.pdf", doc.Name)
}

func TestOnDate(t *testing.T) {
	s := openTest(t, &memSlot{}, nil)
	addCase(t, s, "A", "2025-03-01", "2025-06-01")
	addCase(t, s, "B", "2025-04-01", "2025-03-01")

	reviews, maximums := s.OnDate(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, reviews, 1)
	require.Len(t, maximums, 1)
	assert.Equal(t, "A", reviews[0].Number)
	assert.Equal(t, "B", maximums[0].Number)
}
