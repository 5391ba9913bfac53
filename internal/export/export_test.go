package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/refs"
	"github.com/gestorjudicial/gestor/internal/urgency"
)

var now = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

func sampleCase() model.Case {
	return model.Case{
		ID:              "c1",
		Number:          "12/24.0TXLSB",
		Crimes:          model.StringList{"Roubo"},
		Units:           model.StringList{"DIAP Lisboa"},
		Measures:        model.StringList{"Prisão preventiva"},
		Defendants:      model.StringList{"João Silva", "Ana Costa"},
		Prosecutors:     model.StringList{"Dra. Costa"},
		Judges:          model.StringList{"Dr. Lopes"},
		ProsecutorPhone: "213000000",
		ReviewDeadline:  "2025-02-10",
		MaxDeadline:     "2025-08-01",
		Status:          model.StatusPending,
	}
}

func TestReportNames(t *testing.T) {
	assert.Equal(t, "Relatorio_pendente_2025-02-01.doc", ReportFileName(model.StatusPending, now))
	assert.Equal(t, "Processos Findos - Medidas de Coação", ReportTitle(model.StatusClosed))
}

func TestReportDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, []model.Case{sampleCase()}, model.StatusPending, urgency.New(15), now))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\ufeff<html"))
	assert.Contains(t, out, "<title>Processos Pendentes - Medidas de Coação</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "12/24.0TXLSB")
	assert.Contains(t, out, `<span class="urgent">10/02/2025</span>`)
	assert.Contains(t, out, "01/08/2025")
	assert.Contains(t, out, "<strong>João Silva, Ana Costa</strong>")
	assert.Contains(t, out, "Gerado em: 01/02/2025, 09:30:00")
	assert.NotContains(t, out, emptyReport)
}

func TestReportClosedNeverUrgent(t *testing.T) {
	c := sampleCase()
	c.Status = model.StatusClosed
	md := ReportMarkdown([]model.Case{c}, model.StatusClosed, urgency.New(15), now)
	assert.NotContains(t, md, "urgent")
}

func TestReportEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := SaveReport(fs, "/out", nil, model.StatusClosed, urgency.New(15), now)
	require.NoError(t, err)
	assert.Equal(t, "/out/Relatorio_findo_2025-02-01.doc", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), emptyReport)
}

func TestBuildAlert(t *testing.T) {
	r := refs.Store{
		Prosecutors: []model.Person{{ID: "p", Name: "Dra. Costa", Email: "costa@mp.pt"}},
		Judges:      []model.Person{{ID: "j", Name: "Dr. Lopes", Email: "lopes@tribunal.pt"}, {ID: "k", Name: "Outro", Email: "x@y"}},
	}
	a := BuildAlert(sampleCase(), r, now)

	assert.Equal(t, "Alerta_12_24_0TXLSB.ics", a.FileName)
	assert.Equal(t, []string{"costa@mp.pt", "lopes@tribunal.pt"}, a.Recipients)
	assert.Equal(t, "Alerta de Prazos - Processo 12/24.0TXLSB", a.Subject)

	ics := string(a.ICS)
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//GestorJudicial//PT\r\n"))
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "DTSTART:20250210T090000Z")
	assert.Contains(t, ics, "DTSTART:20250801T090000Z")
	assert.Contains(t, ics, "SUMMARY:Revisão Medida: 12/24.0TXLSB")
	assert.Contains(t, ics, "SUMMARY:Fim Medida: 12/24.0TXLSB")
	assert.Contains(t, ics, `DESCRIPTION:Arguidos: João Silva\, Ana Costa`)
	assert.Contains(t, ics, "TRIGGER:-PT1440M")

	assert.Contains(t, a.GoogleReview, "dates=20250210T090000Z/20250210T100000Z")
	assert.Contains(t, a.GoogleReview, "text=Revis%C3%A3o%20Medida%3A%2012%2F24.0TXLSB")
	assert.Contains(t, a.OutlookReview, "startdt=2025-02-10T09:00:00&enddt=2025-02-10T10:00:00")
	assert.Contains(t, a.Body, "- Agendar Fim Medida: "+a.GoogleMaximum)

	assert.Contains(t, a.GmailLink(), "to=costa%40mp.pt%2Clopes%40tribunal.pt")
	assert.True(t, strings.HasPrefix(a.MailtoLink(), "mailto:costa%40mp.pt,lopes%40tribunal.pt?subject=Alerta%20de%20Prazos"))
}

func TestMailtoLinkEscapesRecipients(t *testing.T) {
	a := Alert{Recipients: []string{"a@mp.pt?bcc=x@y.pt", "b c@mp.pt"}, Subject: "S", Body: "B"}
	link := a.MailtoLink()
	assert.Equal(t, "mailto:a%40mp.pt%3Fbcc%3Dx%40y.pt,b%20c%40mp.pt?subject=S&body=B", link)
	assert.Equal(t, 1, strings.Count(link, "?"))
}

func TestAlertSkipsUnparseableDeadline(t *testing.T) {
	c := sampleCase()
	c.MaxDeadline = ""
	a := BuildAlert(c, refs.Store{}, now)
	assert.Equal(t, 1, strings.Count(string(a.ICS), "BEGIN:VEVENT"))
	assert.Empty(t, a.GoogleMaximum)
	assert.Empty(t, a.Recipients)

	fs := afero.NewMemMapFs()
	path, err := SaveICS(fs, "/cal", a)
	require.NoError(t, err)
	assert.Equal(t, "/cal/Alerta_12_24_0TXLSB.ics", path)
}
