// Command taskloom is a terminal task manager with per-task timers.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskloom/internal/screens"
	"taskloom/internal/task"
	"taskloom/internal/termui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath, logPath string

	cmd := &cobra.Command{
		Use:          "taskloom",
		Short:        "Terminal task manager with projects and per-task timers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(dbPath, logPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "path to the task database")
	cmd.Flags().StringVar(&logPath, "log", "", "append debug logs to this file")
	return cmd
}

func run(dbPath, logPath string) error {
	// the renderer owns stdout; refuse to scribble escapes into a pipe
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal")
	}

	logger, closeLog, err := newLogger(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	store, err := task.Open(ctx, dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	app, err := termui.NewApp(logger)
	if err != nil {
		return err
	}
	screens.RegisterActions(ctx, app, store)

	if err := app.PushScreen(screens.NewTaskListScreen()); err != nil {
		return err
	}

	runErr := app.Run()

	// book a timer still running at quit so the time is not lost
	if id, _ := app.Store().GetState(screens.PathTimerID).(string); id != "" {
		app.Store().Dispatch("timer/toggle", id)
	}
	return runErr
}

// newLogger builds the app logger. Stdout belongs to the renderer, so logs
// either go to a file or nowhere.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "taskloom.db"
	}
	return filepath.Join(home, ".taskloom", "tasks.db")
}
