// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
	"github.com/xkilldash9x/webtrail-cli/internal/browser"
	"github.com/xkilldash9x/webtrail-cli/internal/observability"
	"github.com/xkilldash9x/webtrail-cli/internal/runner"
	"github.com/xkilldash9x/webtrail-cli/internal/trace"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executes a step script in a browser and records the action trace",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their corresponding Viper keys so command-line
			// flags override config file and environment values.
			if err := viper.BindPFlag("driver.script_file", cmd.Flags().Lookup("script")); err != nil {
				return err
			}
			if err := viper.BindPFlag("driver.task_file", cmd.Flags().Lookup("task")); err != nil {
				return err
			}
			if err := viper.BindPFlag("trace.dir", cmd.Flags().Lookup("trace-dir")); err != nil {
				return err
			}
			if err := viper.BindPFlag("trace.session_id", cmd.Flags().Lookup("session-id")); err != nil {
				return err
			}
			return viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			// Re-resolve config now that the run flags are bound.
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}

			if cfg.Driver.ScriptFile == "" {
				return fmt.Errorf("a step script is required (--script or driver.script_file)")
			}
			script, err := runner.LoadScript(cfg.Driver.ScriptFile)
			if err != nil {
				return err
			}

			// The task description is opaque; an unreadable file is fatal.
			var task string
			if cfg.Driver.TaskFile != "" {
				task, err = runner.LoadTask(cfg.Driver.TaskFile)
				if err != nil {
					return err
				}
			}

			sessionID := cfg.Trace.SessionID
			if sessionID == "" {
				sessionID = uuid.New().String()
			}
			sessionDir := filepath.Join(cfg.Trace.Dir, sessionID)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var extraSinks []trace.Sink
			if cfg.Trace.PostgresSink {
				pgSink, err := trace.NewPostgresSinkFromURL(ctx, cfg.Database.URL, logger)
				if err != nil {
					return fmt.Errorf("failed to initialize postgres sink: %w", err)
				}
				extraSinks = append(extraSinks, pgSink)
			}

			rec, err := trace.NewRecorder(trace.Options{
				Dir:        sessionDir,
				SessionID:  sessionID,
				Task:       task,
				TextLog:    cfg.Trace.TextLog,
				JSONLog:    cfg.Trace.JSONLog,
				ExtraSinks: extraSinks,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := rec.End(); err != nil {
					logger.Warn("Error closing trace session", zap.Error(err))
				}
			}()

			session, err := browser.NewSession(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			r := runner.New(session, rec, cfg.Driver.StepsPerSecond, logger)

			g, runCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return r.Run(runCtx, script)
			})
			runErr := g.Wait()

			if errors.Is(runErr, context.Canceled) {
				logger.Warn("Run aborted by signal", zap.String("session_id", sessionID))
			} else if runErr != nil {
				logger.Error("Run failed", zap.Error(runErr), zap.String("session_id", sessionID))
			}

			printSummary(rec.Summarize(), sessionDir)
			return runErr
		},
	}

	runCmd.Flags().StringP("script", "s", "", "Path to the JSON step script to execute.")
	runCmd.Flags().StringP("task", "t", "", "Path to a file holding the task description for the session header.")
	runCmd.Flags().String("trace-dir", "", "Root directory for trace sessions. (Overrides config/env)")
	runCmd.Flags().String("session-id", "", "Explicit session identifier. Default is a generated UUID.")
	runCmd.Flags().Bool("headless", true, "Run the browser headless. (Overrides config/env)")

	return runCmd
}

// printSummary renders the session roll-up on stdout after a run.
func printSummary(sum schemas.Summary, sessionDir string) {
	fmt.Printf("\nSession %s complete.\n", sum.SessionID)
	fmt.Printf("  Actions:    %d finalized (%d succeeded, %d failed)\n", sum.Finalized, sum.Succeeded, sum.Failed)
	if len(sum.IncompleteSeqs) > 0 {
		fmt.Printf("  Incomplete: %v\n", sum.IncompleteSeqs)
	}
	fmt.Printf("  Elapsed:    %s\n", sum.TotalElapsed)
	fmt.Printf("  Trace:      %s\n", sessionDir)
}
