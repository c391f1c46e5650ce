package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// defaultDebounce collapses the burst of events an editor save produces.
const defaultDebounce = 200 * time.Millisecond

func newWatchCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-evaluate a script every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp(st.cfg, st.log, prom.NewRegistry())
			sw, err := newScriptWatcher(args[0], app, cmd.OutOrStdout(), st.log)
			if err != nil {
				return err
			}
			return sw.Run(cmd.Context())
		},
	}
}

// scriptWatcher re-evaluates one script file on change.
type scriptWatcher struct {
	path     string
	app      *App
	out      io.Writer
	log      *slog.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// notify, when set, receives every result after it is printed.
	notify func(EvalResult)
}

func newScriptWatcher(path string, app *App, out io.Writer, log *slog.Logger) (*scriptWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve script path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("failed to stat script: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors often save by replacing the file.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &scriptWatcher{
		path:     abs,
		app:      app,
		out:      out,
		log:      log.With("script", abs),
		debounce: defaultDebounce,
		watcher:  w,
	}, nil
}

// Run evaluates the script once, then again after every change, until
// ctx ends.
func (sw *scriptWatcher) Run(ctx context.Context) error {
	defer sw.watcher.Close()

	sw.log.Info("watching script")
	sw.evaluate(ctx)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				if event.Has(fsnotify.Remove) {
					sw.log.Warn("script removed")
				}
				continue
			}
			sw.log.Debug("script changed", "op", event.Op.String())
			fire = time.After(sw.debounce)
		case <-fire:
			fire = nil
			sw.evaluate(ctx)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			sw.log.Error("watcher error", "error", err)
		}
	}
}

func (sw *scriptWatcher) evaluate(ctx context.Context) {
	source, err := os.ReadFile(sw.path)
	if err != nil {
		sw.log.Warn("failed to read script", "error", err)
		return
	}
	start := time.Now()
	result := sw.app.Evaluate(ctx, string(source))
	fmt.Fprintf(sw.out, "--- %s (%s)\n", filepath.Base(sw.path), time.Since(start).Round(time.Millisecond))
	printResult(sw.out, filepath.Base(sw.path), result)
	if sw.notify != nil {
		sw.notify(result)
	}
}
