package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/session"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases ordered by their earliest deadline",
	Long: `List the cases of one status (pendente or findo), filtered and ordered by
the earliest of their review and maximum-duration deadlines. Cases close to
or past a deadline are flagged.

Examples:
  # Pending cases
  gestor list

  # Closed cases of one defendant
  gestor list --status findo --arguido "silva"

  # Deadlines falling on a given day
  gestor list --date 2025-03-01`,
	RunE: runList,
}

var (
	listStatus  string
	listDate    string
	listFilters pipeline.Filters
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listStatus, "status", "pendente", "Case status to list: pendente or findo")
	listCmd.Flags().StringVar(&listDate, "date", "", "Show pending cases with a deadline on this day (YYYY-MM-DD)")
	addFilterFlags(listCmd, &listFilters)
}

// addFilterFlags registers the six case filters on c.
func addFilterFlags(c *cobra.Command, f *pipeline.Filters) {
	c.Flags().StringVar(&f.Number, "numero", "", "Case number contains")
	c.Flags().StringVar(&f.Crime, "crime", "", "Any crime contains")
	c.Flags().StringVar(&f.Defendant, "arguido", "", "Any defendant contains")
	c.Flags().StringVar(&f.Unit, "diap", "", "Any DIAP contains")
	c.Flags().StringVar(&f.Prosecutor, "procurador", "", "Any prosecutor contains")
	c.Flags().StringVar(&f.Measure, "medida", "", "Any measure contains")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if listDate != "" {
		day, err := time.Parse(model.DateLayout, listDate)
		if err != nil {
			return fmt.Errorf("invalid --date value: %w", err)
		}
		reviews, maximums := a.sess.OnDate(day)
		fmt.Fprintf(out, "Prazos em %s:\n\n", day.Format("02/01/2006"))
		printDay(out, "Revisão", reviews)
		printDay(out, "Prazo máximo", maximums)
		return nil
	}

	status, err := model.ParseStatus(listStatus)
	if err != nil {
		return err
	}
	rows := a.sess.Rows(status, listFilters)
	printRows(out, status, rows)
	return nil
}

func printRows(out io.Writer, status model.Status, rows []session.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "Nenhum processo encontrado.")
		return
	}

	fmt.Fprintf(out, "Found %d %s cases:\n\n", len(rows), status)
	for i, r := range rows {
		c := r.Case
		label := ""
		if l := r.Urgency.Label(); l != "" {
			label = " [" + l + "]"
		}
		fmt.Fprintf(out, "%d. %s%s\n", i+1, c.Number, label)
		fmt.Fprintf(out, "   ID: %s\n", c.ID)
		if len(c.Defendants) > 0 {
			fmt.Fprintf(out, "   Arguidos: %s\n", strings.Join(c.Defendants, ", "))
		}
		if len(c.Crimes) > 0 {
			fmt.Fprintf(out, "   Crime: %s\n", strings.Join(c.Crimes, ", "))
		}
		if len(c.Measures) > 0 {
			fmt.Fprintf(out, "   Medidas: %s\n", strings.Join(c.Measures, ", "))
		}
		fmt.Fprintf(out, "   Revisão: %s  Máximo: %s\n", model.FormatDate(c.ReviewDeadline), model.FormatDate(c.MaxDeadline))
		fmt.Fprintln(out)
	}
}

func printDay(out io.Writer, title string, cases []model.Case) {
	if len(cases) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for _, c := range cases {
		fmt.Fprintf(out, "  - %s (%s)\n", c.Number, strings.Join(c.Defendants, ", "))
	}
	fmt.Fprintln(out)
}
