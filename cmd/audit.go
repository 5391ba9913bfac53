package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit [case-id]",
	Short: "Show the audit trail of committed changes",
	Long: `Show the audit trail recorded for every committed change, newest first.
With a case id only the entries of that case are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum number of entries to show")
}

func runAudit(cmd *cobra.Command, args []string) error {
	caseID := ""
	if len(args) == 1 {
		caseID = args[0]
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		entries, err := a.store.GetAuditEntries(ctx, caseID, auditLimit)
		if err != nil {
			return fmt.Errorf("failed to get audit entries: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No audit entries found.")
			return nil
		}
		for _, e := range entries {
			summary, _ := e.Details["summary"].(string)
			fmt.Fprintf(out, "%s  %-18s %-10s %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Actor, summary)
			if e.CaseID != "" && caseID == "" {
				fmt.Fprintf(out, "  [%s]", e.CaseID)
			}
			if rev := e.Metadata["revision"]; rev != "" {
				fmt.Fprintf(out, "  rev=%s", rev)
			}
			fmt.Fprintln(out)
		}
		stats, err := a.store.Stats(ctx)
		if err != nil {
			a.log.Warnw("store stats unavailable", "error", err)
			return nil
		}
		printAuditFooter(out, len(entries), stats)
		return nil
	})
}

func printAuditFooter(out io.Writer, shown int, stats map[string]int) {
	fmt.Fprintf(out, "\n%d entries shown, %d in the audit trail, %d stored keys\n", shown, stats["audit_entries"], stats["kv"])
}
