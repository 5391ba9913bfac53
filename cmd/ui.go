package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/ui"
)

var (
	uiTheme     string
	uiExportDir string
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Start the terminal interface",
	Long: `Start the terminal interface. Logs go to log.file while it runs.

Keys: 1/2 pending/closed, f filter, t toggle status, d delete, o documents,
r report, a calendar alert, T theme, ? help, q quit.`,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)

	uiCmd.Flags().StringVar(&uiTheme, "theme", "", "Theme: dark, light or high-contrast")
	uiCmd.Flags().StringVar(&uiExportDir, "export-dir", ".", "Directory for reports and calendar files")
	viper.BindPFlag("ui.theme", uiCmd.Flags().Lookup("theme"))
}

func runUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, appOptions{logFile: true})
	if err != nil {
		return err
	}
	defer a.Close()

	var watcher *docs.Watcher
	dc := a.cfg.Documents
	// A file map is a one-time capture, so only a live folder is watched.
	if dc.Dir != "" && !strings.EqualFold(dc.Mode, string(docs.ModeFiles)) {
		watcher = docs.NewWatcher(dc.Dir, []string{"*" + dc.Extension}, a.log)
		if err := watcher.Scan(); err != nil {
			a.log.Warnw("document folder not indexed", "dir", dc.Dir, "error", err)
			watcher = nil
		}
	}

	u := ui.NewUI(ctx, a.sess, ui.Options{
		Theme:     a.cfg.UI.Theme,
		Viewer:    a.viewer(),
		Watcher:   watcher,
		ExportDir: uiExportDir,
		Logger:    a.log,
	})
	// Folder access is asked through the UI while it owns the terminal.
	if err := a.bindDocuments(u); err != nil {
		return err
	}

	if err := u.Start(ctx); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
