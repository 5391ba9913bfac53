package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/export"
)

func (ui *UI) showDocumentPicker() {
	row, ok := ui.selected()
	if !ok {
		ui.setStatusDirect("[%s]Selecione um processo primeiro[-]", ui.theme.TagWarning)
		return
	}
	if len(row.Case.Documents) == 0 {
		ui.setStatusDirect("[%s]O processo %s não tem documentos relacionados[-]", ui.theme.TagMuted, tview.Escape(row.Case.Number))
		return
	}

	list := tview.NewList().ShowSecondaryText(false)
	list.SetTitle(fmt.Sprintf(" Documentos %s ", tview.Escape(row.Case.Number)))
	list.SetBorder(true)
	list.SetBackgroundColor(ui.theme.Surface)
	list.SetBorderColor(ui.theme.FocusBorder)
	list.SetMainTextColor(ui.theme.TextPrimary)
	list.SetSelectedBackgroundColor(ui.theme.SelectionBg)
	list.SetSelectedTextColor(ui.theme.SelectionFg)

	for _, name := range row.Case.Documents {
		name := name
		text := tview.Escape(name)
		if ui.missing(name) {
			text = fmt.Sprintf("[%s]%s (em falta)[-]", ui.theme.TagError, text)
		}
		list.AddItem(text, "", 0, func() {
			ui.restoreMainLayout()
			ui.openDocument(name)
		})
	}
	list.SetDoneFunc(ui.restoreMainLayout)
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && event.Rune() == 'q' {
			ui.restoreMainLayout()
			return nil
		}
		return event
	})

	ui.push(centered(list, 60, len(row.Case.Documents)+2))
}

// openDocument resolves name through the session's binding and hands it to
// the viewer. Resolution may block on a permission prompt, so it never runs
// on the UI goroutine.
func (ui *UI) openDocument(name string) {
	ui.setStatusDirect("[%s]A abrir %s...[-]", ui.theme.TagMuted, tview.Escape(name))
	ui.background(func() {
		doc, err := ui.sess.OpenDocument(ui.ctx, name)
		if err == nil {
			err = ui.viewer.Launch(ui.ctx, doc)
		}
		if err != nil {
			notice := docs.Notice(name, err)
			if notice == "" {
				ui.setStatus("[%s]Operação cancelada[-]", ui.theme.TagMuted)
				return
			}
			ui.log.Warnw("document not opened", "name", name, "error", err)
			ui.queue(func() { ui.showModal("Documento", notice) })
			return
		}
		ui.setStatus("[%s]%s aberto[-]", ui.theme.TagSuccess, tview.Escape(name))
	})
}

type promptAnswer int

const (
	answerAllow promptAnswer = iota
	answerDeny
	answerCancel
)

// Confirm implements docs.Prompter with a modal, so a directory binding can
// ask for access while the terminal belongs to the UI. It must not be called
// on the UI goroutine.
func (ui *UI) Confirm(ctx context.Context, question string) (bool, error) {
	answers := make(chan promptAnswer, 1)
	ui.queue(func() {
		ui.showPrompt(question, answers)
	})
	select {
	case a := <-answers:
		if a == answerCancel {
			return false, docs.ErrCancelled
		}
		return a == answerAllow, nil
	case <-ctx.Done():
	case <-ui.ctx.Done():
	}
	ui.queue(ui.restoreMainLayout)
	return false, docs.ErrCancelled
}

func (ui *UI) showPrompt(question string, answers chan<- promptAnswer) {
	modal := tview.NewModal().
		SetText(question).
		AddButtons([]string{"Permitir", "Recusar"})
	modal.SetTitle(" Acesso à pasta ")
	ui.styleModal(modal)

	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		ui.restoreMainLayout()
		switch buttonLabel {
		case "Permitir":
			answers <- answerAllow
		case "Recusar":
			answers <- answerDeny
		default:
			answers <- answerCancel
		}
	})
	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc {
			ui.restoreMainLayout()
			answers <- answerCancel
			return nil
		}
		return event
	})
	ui.push(modal)
}

func (ui *UI) exportReport() {
	list := ui.sess.View(ui.status, ui.filters)
	now := ui.sess.Now()
	path, err := export.SaveReport(ui.fs, ui.exportDir, list, ui.status, ui.sess.Evaluator(), now)
	if err != nil {
		ui.log.Warnw("report export failed", "error", err)
		ui.setStatusDirect("[%s]Erro ao exportar relatório: %v[-]", ui.theme.TagError, err)
		return
	}
	ui.log.Infow("report exported", "path", path, "cases", len(list))
	ui.setStatusDirect("[%s]Relatório gravado em %s[-]", ui.theme.TagSuccess, tview.Escape(path))
}

func (ui *UI) exportAlert() {
	row, ok := ui.selected()
	if !ok {
		ui.setStatusDirect("[%s]Selecione um processo primeiro[-]", ui.theme.TagWarning)
		return
	}
	alert := export.BuildAlert(row.Case, ui.sess.State().Refs, ui.sess.Now())
	path, err := export.SaveICS(ui.fs, ui.exportDir, alert)
	if err != nil {
		ui.log.Warnw("calendar export failed", "error", err)
		ui.setStatusDirect("[%s]Erro ao gravar %s: %v[-]", ui.theme.TagError, alert.FileName, err)
		return
	}
	ui.log.Infow("calendar alert exported", "path", path, "recipients", len(alert.Recipients))

	text := fmt.Sprintf("Ficheiro gravado: %s\n\nGoogle (revisão):\n%s\n\nGoogle (fim da medida):\n%s",
		path, alert.GoogleReview, alert.GoogleMaximum)
	if len(alert.Recipients) > 0 {
		text += "\n\nEmail:\n" + alert.MailtoLink()
	}
	ui.showModal("Alerta de prazos", tview.Escape(text))
}
