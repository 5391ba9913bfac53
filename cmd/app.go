package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/logging"
	"github.com/gestorjudicial/gestor/internal/pipeline"
	"github.com/gestorjudicial/gestor/internal/session"
	"github.com/gestorjudicial/gestor/internal/store"
	"github.com/gestorjudicial/gestor/internal/urgency"
)

// app bundles what a command needs: config, logger, the SQLite store and an
// open session.
type app struct {
	cfg   Config
	log   *zap.SugaredLogger
	store *store.Store
	sess  *session.Session

	closers []io.Closer
}

type appOptions struct {
	// logFile sends logs to the configured file instead of stderr.
	logFile bool
}

func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg := GetConfig()
	a := &app{cfg: cfg}

	if opts.logFile {
		logger, closer, err := logging.NewFile(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return nil, err
		}
		a.log = logger
		a.closers = append(a.closers, closer)
	} else {
		logger, err := logging.New(cfg.Log.Level, os.Stderr)
		if err != nil {
			return nil, err
		}
		a.log = logger
	}

	st, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st)

	slot := store.NewSlot(ctx, cfg.Storage.RedisURL, cfg.Storage.SlotKey, st, a.log)
	sess, err := session.Open(ctx, session.Options{
		Slot:      slot,
		Audit:     st,
		Resolver:  docs.NewResolver(a.log),
		View:      pipeline.NewView(cfg.Cache.TTL),
		Evaluator: urgency.New(cfg.Urgency.ThresholdDays),
		Logger:    a.log,
		Actor:     actor(),
	})
	if err != nil {
		_ = slot.Close()
		a.Close()
		return nil, err
	}
	a.sess = sess
	a.closers = append([]io.Closer{sess}, a.closers...)
	return a, nil
}

// bindDocuments binds the configured folder to the session's resolver. With
// no folder configured the resolver stays unbound.
func (a *app) bindDocuments(prompter docs.Prompter) error {
	dc := a.cfg.Documents
	if dc.Dir == "" {
		return nil
	}
	switch strings.ToLower(dc.Mode) {
	case "", string(docs.ModeHandle):
		b, _ := docs.OpenDirectory(dc.Dir, dc.Extension, prompter)
		a.sess.Resolver().Bind(b)
	case string(docs.ModeFiles):
		m, err := docs.ScanFiles(afero.NewOsFs(), dc.Dir, dc.Extension)
		if err != nil {
			return fmt.Errorf("scan %s: %w", dc.Dir, err)
		}
		a.sess.Resolver().Bind(m)
	default:
		return fmt.Errorf("unknown documents.mode %q (use handle or files)", dc.Mode)
	}
	return nil
}

func (a *app) viewer() docs.Viewer {
	return docs.Viewer{Command: a.cfg.Viewer.Command}
}

// Close closes the session, the store and the log file, in that order.
func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	if a.log != nil {
		_ = a.log.Sync()
	}
	return first
}

func terminalPrompter() docs.Prompter {
	return docs.TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func actor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}
	return "local"
}

// confirm asks a y/N question on the terminal unless assumeYes is set.
func confirm(ctx context.Context, assumeYes bool, question string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	ok, err := terminalPrompter().Confirm(ctx, question)
	if docs.IsCancelled(err) {
		return false, nil
	}
	return ok, err
}
