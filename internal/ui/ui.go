// Package ui is the terminal front end of gestor: a case table split by
// status, a detail pane, and modals for filtering, confirming deletions,
// opening linked documents and exporting reports and calendar alerts.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/session"
)

// Options configures NewUI. Everything except the session is optional.
type Options struct {
	Theme     string
	Viewer    docs.Viewer
	Watcher   *docs.Watcher
	Fs        afero.Fs
	ExportDir string
	Logger    *zap.SugaredLogger
}

// UI owns the tview application and the presentation state.
type UI struct {
	app       *tview.Application
	sess      *session.Session
	log       *zap.SugaredLogger
	viewer    docs.Viewer
	watcher   *docs.Watcher
	fs        afero.Fs
	exportDir string

	// Layout components
	layout    *tview.Flex
	header    *tview.TextView
	caseTable *tview.Table
	detail    *tview.TextView
	statusBar *tview.TextView

	// State
	status     model.Status
	filters    pipeline.Filters
	rows       []session.Row
	selectedID string

	theme     Theme
	themeName string

	running   atomic.Bool
	lastFocus tview.Primitive
	dialog    tview.Primitive

	ctx    context.Context
	cancel context.CancelFunc
}

// NewUI builds the layout; call Start to run it.
func NewUI(ctx context.Context, sess *session.Session, opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	uiCtx, cancel := context.WithCancel(ctx)
	ui := &UI{
		app:       tview.NewApplication(),
		sess:      sess,
		log:       logger,
		viewer:    opts.Viewer,
		watcher:   opts.Watcher,
		fs:        fs,
		exportDir: exportDir,
		status:    model.StatusPending,
		ctx:       uiCtx,
		cancel:    cancel,
	}

	name := opts.Theme
	if name == "" && !detectTrueColor() {
		name = "high-contrast"
	}
	ui.themeName, ui.theme = themeByName(name)

	ui.setupLayout()
	ui.setupKeybindings()
	ui.applyTheme()
	ui.refreshCases()
	return ui
}

// Start runs the application until q is pressed or ctx is cancelled. From
// here on widgets are only touched on the tview goroutine.
func (ui *UI) Start(ctx context.Context) error {
	ui.log.Infow("starting terminal ui", "theme", ui.themeName)
	ui.running.Store(true)
	defer ui.cancel()

	if ui.watcher != nil {
		ui.watcher.OnChange(func() {
			ui.queue(ui.refreshCases)
		})
		go func() {
			if err := ui.watcher.Run(ui.ctx); err != nil && !errors.Is(err, context.Canceled) {
				ui.log.Warnw("document watcher stopped", "error", err)
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-ui.ctx.Done():
		}
		ui.cancel()
		ui.app.Stop()
	}()

	// Urgency depends on the wall clock, so the table is re-evaluated periodically.
	go ui.tick(time.Minute)

	err := ui.app.Run()
	ui.log.Infow("terminal ui stopped", "error", err)
	return err
}

// Stop stops the application.
func (ui *UI) Stop() {
	ui.cancel()
	ui.app.Stop()
}

func (ui *UI) tick(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ui.ctx.Done():
			return
		case <-t.C:
			ui.queue(ui.refreshCases)
		}
	}
}

// queue runs fn on the UI goroutine once Start has been called, or directly
// before that (unit tests). Updates after shutdown are dropped.
func (ui *UI) queue(fn func()) {
	if !ui.running.Load() {
		fn()
		return
	}
	if ui.ctx.Err() != nil {
		return
	}
	ui.app.QueueUpdateDraw(fn)
}

func (ui *UI) setupLayout() {
	ui.header = tview.NewTextView().SetDynamicColors(true)

	ui.caseTable = tview.NewTable()
	ui.caseTable.SetBorder(true)
	ui.caseTable.SetTitleAlign(tview.AlignLeft)
	ui.caseTable.SetSelectable(true, false)
	ui.caseTable.SetFixed(1, 0)
	ui.caseTable.SetSelectionChangedFunc(func(row, col int) {
		ui.onSelect(row)
	})
	ui.caseTable.SetSelectedFunc(func(row, col int) {
		ui.showDocumentPicker()
	})

	ui.detail = tview.NewTextView()
	ui.detail.SetTitle(" Detalhe ")
	ui.detail.SetBorder(true)
	ui.detail.SetTitleAlign(tview.AlignLeft)
	ui.detail.SetDynamicColors(true)
	ui.detail.SetWrap(true)

	ui.statusBar = tview.NewTextView().SetDynamicColors(true)

	body := tview.NewFlex().
		AddItem(ui.caseTable, 0, 3, true).
		AddItem(ui.detail, 0, 2, false)

	ui.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.header, 1, 0, false).
		AddItem(body, 0, 1, true)

	ui.app.SetRoot(ui.root(), true)
	ui.app.SetFocus(ui.caseTable)
}

func (ui *UI) root() tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.layout, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)
}

func (ui *UI) setupKeybindings() {
	ui.app.SetInputCapture(ui.handleKey)
}

func (ui *UI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlC:
		ui.Stop()
		return nil
	case tcell.KeyTab:
		ui.cycleFocus()
		return nil
	case tcell.KeyEsc:
		if !ui.filters.Empty() {
			ui.clearFilters()
			return nil
		}
		ui.setStatusDirect("")
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case 'q':
		ui.Stop()
	case '1':
		ui.setView(model.StatusPending)
	case '2':
		ui.setView(model.StatusClosed)
	case 's':
		ui.setView(ui.status.Toggled())
	case 'f', '/':
		ui.showFilterModal()
	case 'x':
		ui.clearFilters()
	case 't':
		ui.toggleSelected()
	case 'd':
		ui.showDeleteConfirm()
	case 'o':
		ui.showDocumentPicker()
	case 'r':
		ui.exportReport()
	case 'a':
		ui.exportAlert()
	case 'T':
		ui.cycleTheme()
	case 'R':
		ui.refreshCases()
		ui.setStatusDirect("[%s]Lista atualizada[-]", ui.theme.TagSuccess)
	case 'j':
		ui.moveSelection(1)
	case 'k':
		ui.moveSelection(-1)
	case '?', 'h':
		ui.showHelp()
	default:
		return event
	}
	return nil
}

func (ui *UI) cycleFocus() {
	if ui.app.GetFocus() == ui.caseTable {
		ui.app.SetFocus(ui.detail)
		ui.highlightFocus(ui.detail)
		return
	}
	ui.app.SetFocus(ui.caseTable)
	ui.highlightFocus(ui.caseTable)
}

func (ui *UI) highlightFocus(focused tview.Primitive) {
	ui.caseTable.SetBorderColor(ui.theme.Border)
	ui.detail.SetBorderColor(ui.theme.Border)
	switch focused {
	case ui.caseTable:
		ui.caseTable.SetBorderColor(ui.theme.FocusBorder)
	case ui.detail:
		ui.detail.SetBorderColor(ui.theme.FocusBorder)
	}
}

func (ui *UI) moveSelection(delta int) {
	if len(ui.rows) == 0 {
		return
	}
	row, _ := ui.caseTable.GetSelection()
	row += delta
	if row < 1 {
		row = 1
	}
	if row > len(ui.rows) {
		row = len(ui.rows)
	}
	ui.caseTable.Select(row, 0)
}

func (ui *UI) setView(status model.Status) {
	if ui.status == status {
		return
	}
	ui.status = status
	ui.selectedID = ""
	ui.refreshCases()
	ui.setStatusDirect("[%s]%s[-]", ui.theme.TagAccent, viewTitle(status))
}

func viewTitle(status model.Status) string {
	if status == model.StatusClosed {
		return "Processos Findos"
	}
	return "Processos Pendentes"
}

func (ui *UI) selected() (session.Row, bool) {
	for _, r := range ui.rows {
		if r.Case.ID == ui.selectedID {
			return r, true
		}
	}
	return session.Row{}, false
}

func (ui *UI) onSelect(row int) {
	if row < 1 || row > len(ui.rows) {
		return
	}
	ui.selectedID = ui.rows[row-1].Case.ID
	ui.renderDetail()
}

// GetStats returns UI statistics.
func (ui *UI) GetStats() map[string]interface{} {
	urgent, overdue := 0, 0
	for _, r := range ui.rows {
		if r.Urgency.Urgent {
			urgent++
		}
		if r.Urgency.Overdue {
			overdue++
		}
	}
	return map[string]interface{}{
		"view":          string(ui.status),
		"cases_visible": len(ui.rows),
		"urgent":        urgent,
		"overdue":       overdue,
		"filtered":      !ui.filters.Empty(),
		"theme":         ui.themeName,
	}
}

func (ui *UI) setStatusDirect(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := ui.sess.Now().Format("15:04:05")
	hints := fmt.Sprintf("[%s]1/2[-] vista  [%s]f[-] filtrar  [%s]t[-] estado  [%s]o[-] documentos  [%s]?[-] ajuda",
		ui.theme.TagAccent, ui.theme.TagAccent, ui.theme.TagAccent, ui.theme.TagAccent, ui.theme.TagAccent)
	ui.statusBar.SetText(fmt.Sprintf("[%s]%s[-] [%s]|[-] %s [%s]|[-] %s",
		ui.theme.TagMuted, timestamp,
		ui.theme.TagMuted,
		message,
		ui.theme.TagMuted,
		hints))
}

// setStatus is safe to call from any goroutine.
func (ui *UI) setStatus(format string, args ...interface{}) {
	ui.queue(func() { ui.setStatusDirect(format, args...) })
}

func (ui *UI) applyTheme() {
	ui.header.SetBackgroundColor(ui.theme.Surface)
	ui.header.SetTextColor(ui.theme.TextPrimary)

	ui.caseTable.SetSelectedStyle(tcell.StyleDefault.Background(ui.theme.SelectionBg).Foreground(ui.theme.SelectionFg))
	ui.caseTable.SetBackgroundColor(ui.theme.Surface)
	ui.caseTable.SetTitleColor(ui.theme.TextPrimary)

	ui.detail.SetTextColor(ui.theme.TextPrimary)
	ui.detail.SetBackgroundColor(ui.theme.Surface)
	ui.detail.SetTitleColor(ui.theme.TextPrimary)

	ui.statusBar.SetTextColor(ui.theme.TextPrimary)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)

	ui.highlightFocus(ui.app.GetFocus())
}

func (ui *UI) cycleTheme() {
	ui.setTheme(nextTheme(ui.themeName))
}

func (ui *UI) setTheme(name string) {
	ui.themeName, ui.theme = themeByName(name)
	ui.applyTheme()
	ui.refreshCases()
	ui.log.Infow("theme applied", "theme", ui.themeName)
	ui.setStatusDirect("[%s]Tema: %s[-]", ui.theme.TagAccent, ui.themeName)
}

// showModal shows a read-only message; any key closes it.
func (ui *UI) showModal(title, text string) {
	modal := tview.NewModal()
	modal.SetText(text)
	modal.SetTitle(fmt.Sprintf(" %s ", title))
	modal.AddButtons([]string{"Fechar"})
	ui.styleModal(modal)
	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		ui.restoreMainLayout()
	})
	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyEnter, tcell.KeyRune:
			ui.restoreMainLayout()
			return nil
		}
		return event
	})
	ui.push(modal)
}

func (ui *UI) styleModal(modal *tview.Modal) {
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	modal.SetButtonBackgroundColor(ui.theme.SelectionBg)
	modal.SetButtonTextColor(ui.theme.SelectionFg)
}

// push replaces the root with p; the global bindings are suspended until
// restoreMainLayout.
func (ui *UI) push(p tview.Primitive) {
	ui.lastFocus = ui.app.GetFocus()
	ui.dialog = p
	ui.app.SetInputCapture(nil)
	ui.app.SetRoot(p, true)
	ui.app.SetFocus(p)
}

func (ui *UI) restoreMainLayout() {
	ui.dialog = nil
	ui.app.SetRoot(ui.root(), true)
	ui.app.SetInputCapture(ui.handleKey)
	target := ui.lastFocus
	if target != ui.detail {
		target = ui.caseTable
	}
	ui.app.SetFocus(target)
	ui.highlightFocus(target)
}

func (ui *UI) showHelp() {
	help := strings.Join([]string{
		"1 / 2      Pendentes / Findos",
		"s          Alternar vista",
		"f ou /     Filtrar",
		"x ou Esc   Limpar filtros",
		"t          Marcar como findo / reabrir",
		"d          Eliminar processo",
		"o ou Enter Documentos relacionados",
		"r          Exportar relatório Word",
		"a          Exportar alerta de calendário",
		"T          Mudar tema",
		"R          Atualizar",
		"Tab        Alternar painel",
		"q          Sair",
	}, "\n")
	ui.showModal("Atalhos", help)
}
