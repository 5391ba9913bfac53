// Package export renders the presentational outputs built from the core:
// the tabular report and the per-case calendar alert.
package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/spf13/afero"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/urgency"
)

const emptyReport = "Sem registos a apresentar."

// ReportTitle returns the heading used for a status.
func ReportTitle(status model.Status) string {
	if status == model.StatusPending {
		return "Processos Pendentes - Medidas de Coação"
	}
	return "Processos Findos - Medidas de Coação"
}

// ReportFileName returns e.g. Relatorio_pendente_2025-02-01.doc.
func ReportFileName(status model.Status, now time.Time) string {
	return fmt.Sprintf("Relatorio_%s_%s.doc", status, now.UTC().Format(model.DateLayout))
}

// ReportMarkdown builds the report body as a markdown table, one row per
// case in the given order. The deadline that made a case urgent is wrapped
// in an "urgent" span.
func ReportMarkdown(cases []model.Case, status model.Status, eval urgency.Evaluator, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", ReportTitle(status))
	fmt.Fprintf(&b, "Gerado em: %s\n\n", now.Format("02/01/2006, 15:04:05"))

	b.WriteString("| Processo | Arguidos | Crime / DIAP | Medidas | Revisão | Máximo | Procurador |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, c := range cases {
		res := eval.Evaluate(c, now)
		review := cell(model.FormatDate(c.ReviewDeadline))
		maximum := cell(model.FormatDate(c.MaxDeadline))
		if res.Urgent {
			if res.TriggeredBy == urgency.TriggerMaximum {
				maximum = urgentSpan(maximum)
			} else {
				review = urgentSpan(review)
			}
		}
		fmt.Fprintf(&b, "| %s | **%s** | %s<br/><small>%s</small> | %s | %s | %s | %s<br/>%s |\n",
			cell(c.Number),
			cell(strings.Join(c.Defendants, ", ")),
			cell(strings.Join(c.Crimes, ", ")),
			cell(strings.Join(c.Units, ", ")),
			cell(strings.Join(c.Measures, ", ")),
			review,
			maximum,
			cell(strings.Join(c.Prosecutors, ", ")),
			cell(c.ProsecutorPhone),
		)
	}
	if len(cases) == 0 {
		fmt.Fprintf(&b, "\n%s\n", emptyReport)
	}
	return b.String()
}

const reportShell = `<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head>
<meta charset='utf-8'>
<title>%s</title>
<style>
body { font-family: 'Calibri', sans-serif; font-size: 11pt; }
h1 { color: #2e75b6; text-align: center; margin-bottom: 20px; }
table { border-collapse: collapse; width: 100%%; margin-bottom: 30px; }
th, td { border: 1px solid #000; padding: 8px; text-align: left; vertical-align: top; }
th { background-color: #f2f2f2; font-weight: bold; }
.urgent { color: red; font-weight: bold; }
</style>
</head>
<body>
%s
</body>
</html>
`

// WriteReport renders the Word-compatible HTML document to w.
func WriteReport(w io.Writer, cases []model.Case, status model.Status, eval urgency.Evaluator, now time.Time) error {
	md := ReportMarkdown(cases, status, eval, now)

	p := parser.NewWithExtensions(parser.CommonExtensions)
	// No smartypants: it would turn case numbers like 12/24 into fractions.
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.HrefTargetBlank})
	body := markdown.ToHTML([]byte(md), p, r)

	// Word detects the encoding from the byte order mark.
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, reportShell, html.EscapeString(ReportTitle(status)), body)
	return err
}

// SaveReport writes the report into dir under its standard file name and
// returns the path.
func SaveReport(fs afero.Fs, dir string, cases []model.Case, status model.Status, eval urgency.Evaluator, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, cases, status, eval, now); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ReportFileName(status, now))
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

var cellEscaper = strings.NewReplacer(
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"\r", " ",
	"\n", " ",
)

func cell(s string) string {
	return cellEscaper.Replace(html.EscapeString(s))
}

func urgentSpan(s string) string {
	return `<span class="urgent">` + s + `</span>`
}
