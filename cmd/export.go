package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gestorjudicial/gestor/internal/backup"
	"github.com/gestorjudicial/gestor/internal/export"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/pipeline"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import the full dataset as JSON",
	Long: `Export the full dataset (cases and reference lists) to a standalone JSON
file, or replace the current dataset with the content of such a file.

Examples:
  gestor backup export --out ./backups/
  gestor backup import backup_judicial.json`,
}

var (
	backupExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the dataset to a JSON file",
		Args:  cobra.NoArgs,
		RunE:  runBackupExport,
	}
	backupImportCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the dataset with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupImport,
	}

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Export the filtered case list as a Word document",
		Long: `Export the cases of one status, filtered and ordered as in "gestor list",
to a Word-compatible .doc file named Relatorio_<status>_<date>.doc.`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}

	calendarCmd = &cobra.Command{
		Use:   "calendar <case-id>",
		Short: "Export the deadlines of a case as a calendar alert",
		Long: `Write an .ics file with the review and maximum-duration deadlines of a case
and print the Google Calendar, Outlook and e-mail links for it.`,
		Args: cobra.ExactArgs(1),
		RunE: runCalendar,
	}
)

var (
	backupOut     string
	importYes     bool
	reportStatus  string
	reportOut     string
	reportFilters pipeline.Filters
	calendarOut   string
)

func init() {
	rootCmd.AddCommand(backupCmd, reportCmd, calendarCmd)
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)

	backupExportCmd.Flags().StringVarP(&backupOut, "out", "o", backup.DefaultFileName, "Output file or directory")
	backupImportCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Replace without asking")

	reportCmd.Flags().StringVar(&reportStatus, "status", "pendente", "Case status to export: pendente or findo")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", ".", "Output directory")
	addFilterFlags(reportCmd, &reportFilters)

	calendarCmd.Flags().StringVarP(&calendarOut, "out", "o", ".", "Output directory")
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		snap := a.sess.Snapshot()
		path, err := backup.WriteFile(afero.NewOsFs(), backupOut, snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cases to %s\n", len(snap.Cases), path)
		return nil
	})
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	snap, err := backup.ReadFile(afero.NewOsFs(), args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		question := fmt.Sprintf("Substituir os %d processos atuais pelos %d do ficheiro?", len(a.sess.State().Cases), len(snap.Cases))
		ok, err := confirm(ctx, importYes, question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled.")
			return nil
		}
		if _, err := a.sess.Import(ctx, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cases from %s\n", len(snap.Cases), args[0])
		return nil
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	status, err := model.ParseStatus(reportStatus)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		list := a.sess.View(status, reportFilters)
		path, err := export.SaveReport(afero.NewOsFs(), reportOut, list, status, a.sess.Evaluator(), a.sess.Now())
		if err != nil {
			return err
		}
		a.log.Infow("report exported", "path", path, "cases", len(list))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cases to %s\n", len(list), path)
		return nil
	})
}

func runCalendar(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		c, err := a.sess.Case(args[0])
		if err != nil {
			return err
		}
		alert := export.BuildAlert(c, a.sess.State().Refs, a.sess.Now())
		path, err := export.SaveICS(afero.NewOsFs(), calendarOut, alert)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote %s\n\n", path)
		fmt.Fprintf(out, "Google (revisão):       %s\n", alert.GoogleReview)
		fmt.Fprintf(out, "Google (fim da medida): %s\n", alert.GoogleMaximum)
		fmt.Fprintf(out, "Outlook (revisão):      %s\n", alert.OutlookReview)
		if len(alert.Recipients) > 0 {
			fmt.Fprintf(out, "\nGmail: %s\n", alert.GmailLink())
			fmt.Fprintf(out, "Email: %s\n", alert.MailtoLink())
		} else {
			fmt.Fprintln(out, "\nNo prosecutor or judge e-mail known for this case.")
		}
		return nil
	})
}
