package export

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/refs"
)

// Alert bundles everything needed to share the deadlines of one case.
type Alert struct {
	FileName      string
	ICS           []byte
	GoogleReview  string
	GoogleMaximum string
	OutlookReview string
	Recipients    []string
	Subject       string
	Body          string
}

// AlertFileName returns Alerta_<number>.ics with "/" and "." replaced by "_".
func AlertFileName(number string) string {
	return "Alerta_" + strings.NewReplacer("/", "_", ".", "_").Replace(number) + ".ics"
}

// BuildAlert prepares the calendar file, web calendar links and e-mail draft
// for c. Recipients are the e-mails of the case's prosecutors and judges
// known to the reference store.
func BuildAlert(c model.Case, r refs.Store, now time.Time) Alert {
	defendants := strings.Join(c.Defendants, ", ")
	details := "Arguidos: " + defendants
	reviewTitle := "Revisão Medida: " + c.Number
	maxTitle := "Fim Medida: " + c.Number

	a := Alert{
		FileName: AlertFileName(c.Number),
		Subject:  "Alerta de Prazos - Processo " + c.Number,
	}
	a.Recipients = append(r.Emails(model.KindProsecutors, c.Prosecutors), r.Emails(model.KindJudges, c.Judges)...)

	a.GoogleReview = googleLink(reviewTitle, c.ReviewDeadline, details)
	a.GoogleMaximum = googleLink(maxTitle, c.MaxDeadline, details)
	a.OutlookReview = outlookLink(reviewTitle, c.ReviewDeadline, details)

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//GestorJudicial//PT\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	writeEvent(&ics, c.ID+"-revisao", reviewTitle, c.ReviewDeadline, details, now)
	writeEvent(&ics, c.ID+"-maximo", maxTitle, c.MaxDeadline, details, now)
	ics.WriteString("END:VCALENDAR\r\n")
	a.ICS = []byte(ics.String())

	a.Body = fmt.Sprintf("Seguem os prazos para o processo %s.\n\n", c.Number) +
		"OPÇÃO 1: ADICIONAR AO CALENDÁRIO GOOGLE (Clique nos links abaixo):\n" +
		fmt.Sprintf("- Agendar Revisão: %s\n", a.GoogleReview) +
		fmt.Sprintf("- Agendar Fim Medida: %s\n\n", a.GoogleMaximum) +
		"OPÇÃO 2: ADICIONAR AO OUTLOOK WEB:\n" +
		fmt.Sprintf("- Agendar Revisão: %s\n\n", a.OutlookReview) +
		"OPÇÃO 3: FICHEIRO ANEXO (.ics)\n" +
		fmt.Sprintf("- Se o ficheiro não estiver anexado, utilize o ficheiro \"%s\" e abra-o para importar para o Outlook/Agenda Desktop.\n\n", a.FileName) +
		details
	return a
}

// GmailLink opens a prefilled Gmail compose window.
func (a Alert) GmailLink() string {
	return "https://mail.google.com/mail/?view=cm&fs=1&to=" + escape(strings.Join(a.Recipients, ",")) +
		"&su=" + escape(a.Subject) + "&body=" + escape(a.Body)
}

// MailtoLink is the plain mail client fallback. Each address is escaped on
// its own so the separating commas stay literal.
func (a Alert) MailtoLink() string {
	to := make([]string, len(a.Recipients))
	for i, r := range a.Recipients {
		to[i] = escape(r)
	}
	return "mailto:" + strings.Join(to, ",") + "?subject=" + escape(a.Subject) + "&body=" + escape(a.Body)
}

// SaveICS writes the calendar file into dir and returns its path.
func SaveICS(fs afero.Fs, dir string, a Alert) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, a.FileName)
	if err := afero.WriteFile(fs, path, a.ICS, 0644); err != nil {
		return "", fmt.Errorf("write calendar: %w", err)
	}
	return path, nil
}

// writeEvent adds one all-morning event with a one-day display alarm.
// Deadlines that do not parse produce no event.
func writeEvent(b *strings.Builder, uid, title, date, description string, now time.Time) {
	d, ok := model.ParseDate(date)
	if !ok {
		return
	}
	stamp := d.Format("20060102") + "T090000Z"
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(b, "UID:%s@gestor\r\n", uid)
	fmt.Fprintf(b, "DTSTAMP:%s\r\n", now.UTC().Format("20060102T150405Z"))
	fmt.Fprintf(b, "DTSTART:%s\r\n", stamp)
	fmt.Fprintf(b, "DTEND:%s\r\n", stamp)
	fmt.Fprintf(b, "SUMMARY:%s\r\n", icsText(title))
	fmt.Fprintf(b, "DESCRIPTION:%s\r\n", icsText(description))
	b.WriteString("STATUS:CONFIRMED\r\n")
	b.WriteString("BEGIN:VALARM\r\n")
	b.WriteString("TRIGGER:-PT1440M\r\n")
	b.WriteString("ACTION:DISPLAY\r\n")
	b.WriteString("DESCRIPTION:Reminder\r\n")
	b.WriteString("END:VALARM\r\n")
	b.WriteString("END:VEVENT\r\n")
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func icsText(s string) string {
	return icsEscaper.Replace(s)
}

func compact(date string) string {
	d, ok := model.ParseDate(date)
	if !ok {
		return ""
	}
	return d.Format("20060102")
}

func googleLink(title, date, details string) string {
	day := compact(date)
	if day == "" {
		return ""
	}
	return "https://calendar.google.com/calendar/render?action=TEMPLATE&text=" + escape(title) +
		"&dates=" + day + "T090000Z/" + day + "T100000Z&details=" + escape(details)
}

func outlookLink(title, date, details string) string {
	d, ok := model.ParseDate(date)
	if !ok {
		return ""
	}
	day := d.Format(model.DateLayout)
	return "https://outlook.live.com/calendar/0/deeplink/compose?path=/calendar/action/compose&rru=addevent&subject=" +
		escape(title) + "&startdt=" + day + "T09:00:00&enddt=" + day + "T10:00:00&body=" + escape(details)
}

// escape matches encodeURIComponent: spaces become %20, not "+".
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
