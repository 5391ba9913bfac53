package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/state"
	"github.com/gestorjudicial/gestor/internal/urgency"
)

var caseHeaders = []string{"Processo", "Arguidos", "Crime", "Medidas", "Revisão", "Máximo", "Alerta"}

// background runs fn off the UI goroutine while the app runs, inline otherwise.
func (ui *UI) background(fn func()) {
	if ui.running.Load() {
		go fn()
		return
	}
	fn()
}

// missing reports whether a linked document is known to be absent. A file
// map binding answers from its captured names, a bound folder from the
// watcher index. With neither nothing is reported missing.
func (ui *UI) missing(name string) bool {
	if m, ok := ui.sess.Resolver().Binding().(*docs.FileMapBinding); ok {
		return !m.Present(name)
	}
	return ui.watcher != nil && !ui.watcher.Present(name)
}

// refreshCases recomputes the visible rows and redraws the table. Must run
// on the UI goroutine.
func (ui *UI) refreshCases() {
	ui.rows = ui.sess.Rows(ui.status, ui.filters)
	ui.renderTable()
	ui.renderHeader()
	ui.renderDetail()
}

func (ui *UI) renderHeader() {
	urgent := 0
	for _, r := range ui.rows {
		if r.Urgency.Urgent {
			urgent++
		}
	}
	text := fmt.Sprintf(" [%s]Gestor Judicial[-]  %s [%s](%d)[-]",
		ui.theme.TagAccent, viewTitle(ui.status), ui.theme.TagMuted, len(ui.rows))
	if urgent > 0 {
		text += fmt.Sprintf("  [%s]%d com prazo próximo[-]", ui.theme.TagWarning, urgent)
	}
	if !ui.filters.Empty() {
		text += fmt.Sprintf("  [%s]filtros: %s[-]", ui.theme.TagMuted, describeFilters(ui.filters))
	}
	ui.header.SetText(text)
}

func describeFilters(f pipeline.Filters) string {
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+"="+v)
		}
	}
	add("processo", f.Number)
	add("crime", f.Crime)
	add("arguido", f.Defendant)
	add("diap", f.Unit)
	add("procurador", f.Prosecutor)
	add("medida", f.Measure)
	return strings.Join(parts, " ")
}

func (ui *UI) renderTable() {
	ui.caseTable.Clear()
	ui.caseTable.SetTitle(fmt.Sprintf(" %s ", viewTitle(ui.status)))
	for col, h := range caseHeaders {
		ui.caseTable.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(ui.theme.TableHeader).
			SetBackgroundColor(ui.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
	if len(ui.rows) == 0 {
		ui.caseTable.SetCell(1, 0, tview.NewTableCell("Nenhum processo encontrado.").
			SetTextColor(ui.theme.TableRowMuted).
			SetSelectable(false))
		ui.selectedID = ""
		return
	}

	selectRow := 1
	for i, r := range ui.rows {
		c := r.Case
		color := ui.rowColor(r.Case, r.Urgency)
		values := []string{
			c.Number,
			strings.Join(c.Defendants, ", "),
			strings.Join(c.Crimes, ", "),
			strings.Join(c.Measures, ", "),
			model.FormatDate(c.ReviewDeadline),
			model.FormatDate(c.MaxDeadline),
			r.Urgency.Label(),
		}
		for col, v := range values {
			cell := tview.NewTableCell(tview.Escape(v)).
				SetTextColor(color).
				SetMaxWidth(32).
				SetExpansion(expansion(col))
			if r.Urgency.Urgent && triggered(col, r.Urgency.TriggeredBy) {
				cell.SetAttributes(tcell.AttrBold | tcell.AttrUnderline)
			}
			ui.caseTable.SetCell(i+1, col, cell)
		}
		if c.ID == ui.selectedID {
			selectRow = i + 1
		}
	}
	ui.caseTable.Select(selectRow, 0)
	ui.selectedID = ui.rows[selectRow-1].Case.ID
}

func expansion(col int) int {
	switch col {
	case 1, 2:
		return 2
	case 3:
		return 1
	}
	return 0
}

func triggered(col int, t urgency.Trigger) bool {
	return (col == 4 && t == urgency.TriggerReview) || (col == 5 && t == urgency.TriggerMaximum)
}

func (ui *UI) rowColor(c model.Case, res urgency.Result) tcell.Color {
	switch {
	case c.Status == model.StatusClosed:
		return ui.theme.TableRowMuted
	case res.Overdue:
		return ui.theme.Error
	case res.Urgent:
		return ui.theme.Warning
	}
	return ui.theme.TableRow
}

func (ui *UI) renderDetail() {
	row, ok := ui.selected()
	if !ok {
		ui.detail.SetText(fmt.Sprintf("[%s]Selecione um processo.[-]", ui.theme.TagMuted))
		return
	}
	c := row.Case
	refs := ui.sess.State().Refs

	var b strings.Builder
	fmt.Fprintf(&b, "[%s::b]%s[-::-]\n", ui.theme.TagAccent, tview.Escape(c.Number))
	if label := row.Urgency.Label(); label != "" {
		tag := ui.theme.TagWarning
		if row.Urgency.Overdue {
			tag = ui.theme.TagError
		}
		fmt.Fprintf(&b, "[%s::b]%s[-::-] [%s]%s[-]\n", tag, label, ui.theme.TagMuted, daysText(row.Urgency.DaysLeft))
	}
	b.WriteString("\n")

	tags := func(title string, kind model.Kind, values []string) {
		fmt.Fprintf(&b, "[%s]%s:[-] ", ui.theme.TagMuted, title)
		if len(values) == 0 {
			b.WriteString("-\n")
			return
		}
		for i, v := range values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tview.Escape(v))
			if refs.IsExternal(kind, v) {
				fmt.Fprintf(&b, " [%s](externo)[-]", ui.theme.TagMuted)
			}
		}
		b.WriteString("\n")
	}
	tags("Arguidos", model.KindDefendants, c.Defendants)
	tags("Crime", model.KindCrimes, c.Crimes)
	tags("DIAP", model.KindUnits, c.Units)
	tags("Medidas", model.KindMeasures, c.Measures)
	tags("Procurador", model.KindProsecutors, c.Prosecutors)
	tags("Juiz", model.KindJudges, c.Judges)
	if c.ProsecutorPhone != "" {
		fmt.Fprintf(&b, "[%s]Telefone:[-] %s\n", ui.theme.TagMuted, tview.Escape(c.ProsecutorPhone))
	}
	fmt.Fprintf(&b, "[%s]Revisão:[-] %s\n", ui.theme.TagMuted, model.FormatDate(c.ReviewDeadline))
	fmt.Fprintf(&b, "[%s]Prazo máximo:[-] %s\n", ui.theme.TagMuted, model.FormatDate(c.MaxDeadline))

	if len(c.Documents) > 0 {
		fmt.Fprintf(&b, "\n[%s]Documentos:[-]\n", ui.theme.TagMuted)
		for _, name := range c.Documents {
			marker := "•"
			if ui.missing(name) {
				marker = fmt.Sprintf("[%s]✗[-]", ui.theme.TagError)
			}
			fmt.Fprintf(&b, " %s %s\n", marker, tview.Escape(name))
		}
	}
	if c.Comments != "" {
		fmt.Fprintf(&b, "\n[%s]Comentários:[-]\n%s\n", ui.theme.TagMuted, tview.Escape(c.Comments))
	}
	ui.detail.SetText(b.String())
	ui.detail.ScrollToBeginning()
}

func daysText(days float64) string {
	switch {
	case days < 0:
		return fmt.Sprintf("(expirado há %d dias)", int(-days)+1)
	case days < 1:
		return "(termina hoje)"
	}
	return fmt.Sprintf("(faltam %d dias)", int(days))
}

func (ui *UI) toggleSelected() {
	row, ok := ui.selected()
	if !ok {
		ui.setStatusDirect("[%s]Selecione um processo primeiro[-]", ui.theme.TagWarning)
		return
	}
	id, number := row.Case.ID, row.Case.Number
	ui.background(func() {
		_, err := ui.sess.Dispatch(ui.ctx, state.ToggleStatus{ID: id})
		ui.queue(func() {
			if err != nil {
				ui.setStatusDirect("[%s]Erro ao alterar o estado: %v[-]", ui.theme.TagError, err)
				return
			}
			ui.refreshCases()
			ui.setStatusDirect("[%s]Processo %s movido[-]", ui.theme.TagSuccess, tview.Escape(number))
		})
	})
}

func (ui *UI) showDeleteConfirm() {
	row, ok := ui.selected()
	if !ok {
		ui.setStatusDirect("[%s]Selecione um processo primeiro[-]", ui.theme.TagWarning)
		return
	}
	pending, err := ui.sess.RequestDelete(row.Case.ID)
	if err != nil {
		ui.setStatusDirect("[%s]%v[-]", ui.theme.TagError, err)
		return
	}

	modal := tview.NewModal().
		SetText(pending.Summary + "\n\nEsta ação não pode ser anulada.").
		AddButtons([]string{"Eliminar", "Cancelar"})
	modal.SetTitle(" Confirmar ")
	ui.styleModal(modal)

	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		ui.restoreMainLayout()
		if buttonLabel != "Eliminar" {
			ui.sess.Cancel(pending.Ticket)
			return
		}
		ui.setStatusDirect("[%s]A eliminar...[-]", ui.theme.TagWarning)
		ui.background(func() {
			_, err := ui.sess.Confirm(ui.ctx, pending.Ticket)
			ui.queue(func() {
				if err != nil {
					ui.setStatusDirect("[%s]Erro ao eliminar: %v[-]", ui.theme.TagError, err)
					return
				}
				ui.selectedID = ""
				ui.refreshCases()
				ui.setStatusDirect("[%s]Processo eliminado[-]", ui.theme.TagSuccess)
			})
		})
	})
	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc {
			ui.sess.Cancel(pending.Ticket)
			ui.restoreMainLayout()
			return nil
		}
		return event
	})
	ui.push(modal)
}

func (ui *UI) showFilterModal() {
	form := tview.NewForm()
	form.SetTitle(" Filtrar processos ")
	form.SetBorder(true)
	form.SetBackgroundColor(ui.theme.Surface)
	form.SetFieldBackgroundColor(ui.theme.Bg)
	form.SetFieldTextColor(ui.theme.TextPrimary)
	form.SetLabelColor(ui.theme.TextPrimary)
	form.SetButtonBackgroundColor(ui.theme.SelectionBg)
	form.SetButtonTextColor(ui.theme.SelectionFg)
	form.SetBorderColor(ui.theme.FocusBorder)

	f := ui.filters
	field := func(label string, target *string) {
		form.AddInputField(label, *target, 40, nil, func(text string) {
			*target = text
		})
	}
	field("Nº processo", &f.Number)
	field("Crime", &f.Crime)
	field("Arguido", &f.Defendant)
	field("DIAP", &f.Unit)
	field("Procurador", &f.Prosecutor)
	field("Medida", &f.Measure)

	form.AddButton("Aplicar", func() {
		ui.restoreMainLayout()
		ui.applyFilters(f)
	})
	form.AddButton("Limpar", func() {
		ui.restoreMainLayout()
		ui.clearFilters()
	})
	form.AddButton("Cancelar", func() {
		ui.restoreMainLayout()
	})
	form.SetCancelFunc(ui.restoreMainLayout)

	ui.push(centered(form, 60, 17))
}

func (ui *UI) applyFilters(f pipeline.Filters) {
	ui.filters = f
	ui.refreshCases()
	if f.Empty() {
		ui.setStatusDirect("[%s]Sem filtros[-]", ui.theme.TagMuted)
		return
	}
	ui.setStatusDirect("[%s]%d processo(s) correspondem aos filtros[-]", ui.theme.TagAccent, len(ui.rows))
}

func (ui *UI) clearFilters() {
	ui.applyFilters(pipeline.Filters{})
}

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
