package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rivo/tview"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/session"
	"github.com/gestorjudicial/gestor/internal/state"
	"github.com/gestorjudicial/gestor/internal/store"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	n := 0
	env := state.Env{
		Now: func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
	sess, err := session.Open(context.Background(), session.Options{Slot: st.Slot("ui-test"), Audit: st, Env: env})
	require.NoError(t, err)
	return sess
}

func seed(t *testing.T, sess *session.Session) {
	t.Helper()
	ctx := context.Background()
	drafts := []model.CaseDraft{
		{Number: "100/24.0T9LSB", ReviewDeadline: "2025-06-01", MaxDeadline: "2025-09-01", Defendants: model.StringList{"Rui Sousa"}},
		{Number: "200/24.0PBPRT", ReviewDeadline: "2025-02-05", MaxDeadline: "2025-08-01", Defendants: model.StringList{"Ana Costa"}, Crimes: model.StringList{"Furto"}},
		{Number: "300/23.1JAPRT", ReviewDeadline: "2025-03-01", MaxDeadline: "2025-01-20", Defendants: model.StringList{"Luís Pinto"}, Documents: model.StringList{"acusacao.pdf"}},
	}
	for _, d := range drafts {
		_, err := sess.Dispatch(ctx, state.AddCase{Draft: d})
		require.NoError(t, err)
	}
	_, err := sess.Dispatch(ctx, state.AddReference{Kind: model.KindDefendants, Fields: model.EntryFields{Label: "Ana Costa"}})
	require.NoError(t, err)
}

func newTestUI(t *testing.T) (*UI, *session.Session) {
	t.Helper()
	sess := testSession(t)
	seed(t, sess)
	u := NewUI(context.Background(), sess, Options{Theme: "dark", Fs: afero.NewMemMapFs(), ExportDir: "/out"})
	t.Cleanup(u.cancel)
	return u, sess
}

func cellText(u *UI, row, col int) string {
	return u.caseTable.GetCell(row, col).Text
}

func TestNewUIShowsPendingCasesByDeadline(t *testing.T) {
	u, _ := newTestUI(t)

	stats := u.GetStats()
	assert.Equal(t, "pendente", stats["view"])
	assert.Equal(t, 3, stats["cases_visible"])
	assert.Equal(t, 2, stats["urgent"])
	assert.Equal(t, 1, stats["overdue"])

	assert.Equal(t, "300/23.1JAPRT", cellText(u, 1, 0))
	assert.Equal(t, "200/24.0PBPRT", cellText(u, 2, 0))
	assert.Equal(t, "100/24.0T9LSB", cellText(u, 3, 0))
}

func TestTableLabelsAndColors(t *testing.T) {
	u, _ := newTestUI(t)

	assert.Equal(t, "PRAZO CRÍTICO", cellText(u, 1, 6))
	assert.Equal(t, "ALERTA DE PRAZO", cellText(u, 2, 6))
	assert.Equal(t, "", cellText(u, 3, 6))

	assert.Equal(t, u.theme.Error, u.caseTable.GetCell(1, 0).Color)
	assert.Equal(t, u.theme.Warning, u.caseTable.GetCell(2, 0).Color)
	assert.Equal(t, u.theme.TableRow, u.caseTable.GetCell(3, 0).Color)

	assert.Equal(t, "20/01/2025", cellText(u, 1, 5))
}

func TestToggleMovesCaseBetweenViews(t *testing.T) {
	u, sess := newTestUI(t)

	u.caseTable.Select(2, 0)
	require.Equal(t, "200/24.0PBPRT", mustSelected(t, u).Case.Number)
	u.toggleSelected()

	assert.Len(t, u.rows, 2)
	c, err := sess.Case(sessCaseID(t, sess, "200/24.0PBPRT"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, c.Status)

	u.setView(model.StatusClosed)
	require.Len(t, u.rows, 1)
	assert.Equal(t, "200/24.0PBPRT", cellText(u, 1, 0))
	assert.Equal(t, "", cellText(u, 1, 6), "closed cases are never flagged")
	assert.Equal(t, u.theme.TableRowMuted, u.caseTable.GetCell(1, 0).Color)
}

func TestFiltersNarrowTheTable(t *testing.T) {
	u, _ := newTestUI(t)

	u.applyFilters(pipeline.Filters{Defendant: "ana"})
	require.Len(t, u.rows, 1)
	assert.Equal(t, "200/24.0PBPRT", cellText(u, 1, 0))
	assert.Contains(t, u.header.GetText(true), "arguido=ana")
	assert.Equal(t, true, u.GetStats()["filtered"])

	u.applyFilters(pipeline.Filters{Crime: "roubo"})
	assert.Empty(t, u.rows)
	assert.Equal(t, "Nenhum processo encontrado.", cellText(u, 1, 0))

	u.clearFilters()
	assert.Len(t, u.rows, 3)
}

func TestDetailMarksExternalTags(t *testing.T) {
	u, _ := newTestUI(t)

	u.caseTable.Select(2, 0)
	text := u.detail.GetText(true)
	assert.Contains(t, text, "Ana Costa")
	assert.NotContains(t, text, "Ana Costa (externo)")
	assert.Contains(t, text, "Furto (externo)")
	assert.Contains(t, text, "ALERTA DE PRAZO")

	u.caseTable.Select(1, 0)
	text = u.detail.GetText(true)
	assert.Contains(t, text, "Luís Pinto (externo)")
	assert.Contains(t, text, "acusacao.pdf")
}

func TestDetailMissingMarksFollowFileMap(t *testing.T) {
	u, sess := newTestUI(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/pasta/2024/acusacao.pdf", []byte("%PDF"), 0644))
	m, err := docs.ScanFiles(fs, "/pasta", ".pdf")
	require.NoError(t, err)
	sess.Resolver().Bind(m)

	u.caseTable.Select(1, 0)
	u.renderDetail()
	assert.NotContains(t, u.detail.GetText(true), "✗")
	assert.False(t, u.missing("acusacao.pdf"))

	empty, err := docs.SelectFiles(fs)
	require.NoError(t, err)
	sess.Resolver().Bind(empty)
	u.renderDetail()
	assert.Contains(t, u.detail.GetText(true), "✗ acusacao.pdf")
}

func TestQueueAfterShutdown(t *testing.T) {
	u, _ := newTestUI(t)

	ran := false
	u.queue(func() { ran = true })
	assert.True(t, ran, "runs inline before Start")

	u.running.Store(true)
	u.Stop()
	ran = false
	u.queue(func() { ran = true })
	assert.False(t, ran, "dropped once the app has stopped")
}

func TestConfirmCancelledByContext(t *testing.T) {
	u, _ := newTestUI(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := u.Confirm(ctx, "Permitir acesso?")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, docs.ErrCancelled))
	assert.Nil(t, u.dialog)
}

func TestDeleteWaitsForConfirmation(t *testing.T) {
	u, sess := newTestUI(t)

	u.caseTable.Select(1, 0)
	u.showDeleteConfirm()
	_, isModal := u.dialog.(*tview.Modal)
	assert.True(t, isModal)
	assert.Len(t, sess.State().Cases, 3)

	u.restoreMainLayout()
	assert.Nil(t, u.dialog)
	assert.Equal(t, u.caseTable, u.app.GetFocus())
}

func TestOpenDocumentWithoutBinding(t *testing.T) {
	u, _ := newTestUI(t)

	u.caseTable.Select(1, 0)
	u.openDocument("acusacao.pdf")
	_, isModal := u.dialog.(*tview.Modal)
	assert.True(t, isModal, "unbound resolver reports a notice")
}

func TestExportReport(t *testing.T) {
	u, _ := newTestUI(t)

	u.exportReport()
	ok, err := afero.Exists(u.fs, "/out/Relatorio_pendente_2025-02-01.doc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExportAlert(t *testing.T) {
	u, _ := newTestUI(t)

	u.caseTable.Select(2, 0)
	u.exportAlert()
	entries, err := afero.ReadDir(u.fs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".ics")
}

func TestCycleTheme(t *testing.T) {
	u, _ := newTestUI(t)

	assert.Equal(t, "dark", u.themeName)
	u.cycleTheme()
	assert.Equal(t, "light", u.themeName)
	u.cycleTheme()
	assert.Equal(t, "high-contrast", u.themeName)
	u.cycleTheme()
	assert.Equal(t, "dark", u.themeName)
}

func TestDaysText(t *testing.T) {
	assert.Equal(t, "(termina hoje)", daysText(0.4))
	assert.Equal(t, "(faltam 3 dias)", daysText(3.7))
	assert.Equal(t, "(expirado há 1 dias)", daysText(-0.2))
}

func mustSelected(t *testing.T, u *UI) session.Row {
	t.Helper()
	r, ok := u.selected()
	require.True(t, ok)
	return r
}

func sessCaseID(t *testing.T, sess *session.Session, number string) string {
	t.Helper()
	for _, c := range sess.State().Cases {
		if c.Number == number {
			return c.ID
		}
	}
	t.Fatalf("case %s not found", number)
	return ""
}
