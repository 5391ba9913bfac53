package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"

	"github.com/gestorjudicial/gestor/internal/docs"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Work with the documents of the bound folder",
	Long: `Resolve the documents linked to cases against the configured folder
(documents.dir). In handle mode the folder is read on demand after access is
granted; in files mode it is scanned once and documents are resolved by file
name.

Examples:
  gestor docs list --docs-dir ~/Processos
  gestor docs check
  gestor docs open acusacao.pdf --launch
  gestor docs search "prisão preventiva"`,
}

var (
	docsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the documents available under the binding",
		Args:  cobra.NoArgs,
		RunE:  runDocsList,
	}
	docsCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Report linked documents that do not resolve",
		Args:  cobra.NoArgs,
		RunE:  runDocsCheck,
	}
	docsOpenCmd = &cobra.Command{
		Use:   "open <name>",
		Short: "Resolve a document and optionally open it in the viewer",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsOpen,
	}
	docsSearchCmd = &cobra.Command{
		Use:   "search <text>",
		Short: "Search the start of every document for a text",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsSearch,
	}
)

var docsLaunch bool

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd, docsCheckCmd, docsOpenCmd, docsSearchCmd)

	docsOpenCmd.Flags().BoolVar(&docsLaunch, "launch", false, "Open the document in the external viewer")
}

// withDocuments is withApp plus a bound resolver.
func withDocuments(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if a.cfg.Documents.Dir == "" {
			return fmt.Errorf("%s (set --docs-dir or documents.dir)", docs.Notice("", docs.ErrNoBinding))
		}
		if err := a.bindDocuments(terminalPrompter()); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}

// reportErr prints the user notice for err and returns it with cobra's own
// error line silenced, so the failure is shown once. Cancellation is silent.
func reportErr(cmd *cobra.Command, name string, err error) error {
	if docs.IsCancelled(err) {
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), docs.Notice(name, err))
	cmd.SilenceErrors = true
	return err
}

func runDocsList(cmd *cobra.Command, args []string) error {
	return withDocuments(cmd, func(ctx context.Context, a *app) error {
		names, err := a.sess.Resolver().Names(ctx)
		if err != nil {
			return reportErr(cmd, "", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%d):\n", a.sess.Resolver().Binding().Describe(), len(names))
		for _, n := range names {
			fmt.Fprintf(out, "  %s\n", n)
		}
		return nil
	})
}

func runDocsCheck(cmd *cobra.Command, args []string) error {
	return withDocuments(cmd, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()
		total := 0
		for _, c := range a.sess.State().Cases {
			if len(c.Documents) == 0 {
				continue
			}
			missing, err := a.sess.MissingDocuments(ctx, c.ID)
			if err != nil {
				return reportErr(cmd, "", err)
			}
			for _, m := range missing {
				fmt.Fprintf(out, "%s: %s (%v)\n", c.Number, m.Name, m.Err)
			}
			total += len(missing)
		}
		if total == 0 {
			fmt.Fprintln(out, "All linked documents resolve.")
			return nil
		}
		fmt.Fprintf(out, "\n%d linked document(s) missing.\n", total)
		return nil
	})
}

func runDocsOpen(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withDocuments(cmd, func(ctx context.Context, a *app) error {
		doc, err := a.sess.OpenDocument(ctx, name)
		if err != nil {
			return reportErr(cmd, name, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %d bytes  %s\n", doc.Name, doc.Size, doc.ModTime.Format("2006-01-02 15:04"))
		if doc.Path != "" {
			fmt.Fprintf(out, "  %s\n", doc.Path)
		}
		if !docsLaunch {
			return nil
		}
		if err := a.viewer().Launch(ctx, doc); err != nil {
			return reportErr(cmd, name, err)
		}
		return nil
	})
}

func runDocsSearch(cmd *cobra.Command, args []string) error {
	fold := cases.Fold()
	needle := fold.String(args[0])
	return withDocuments(cmd, func(ctx context.Context, a *app) error {
		names, err := a.sess.Resolver().Names(ctx)
		if err != nil {
			return reportErr(cmd, "", err)
		}
		out := cmd.OutOrStdout()
		hits := 0
		for _, name := range names {
			doc, err := a.sess.OpenDocument(ctx, name)
			if err != nil {
				if docs.IsCancelled(err) {
					return nil
				}
				continue
			}
			text, err := doc.Excerpt(docs.ExcerptLimit)
			if err != nil {
				a.log.Warnw("excerpt failed", "name", name, "error", err)
				continue
			}
			if strings.Contains(fold.String(text), needle) {
				fmt.Fprintln(out, name)
				hits++
			}
		}
		if hits == 0 {
			fmt.Fprintln(out, "No documents match.")
		}
		return nil
	})
}
