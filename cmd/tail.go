// File: cmd/tail.go
package cmd

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/webtrail-cli/internal/trace"
)

// newTailCmd creates the `tail` command, which follows a session's text trace
// while a run is in progress.
func newTailCmd() *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follows the text trace of a session as it is written",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("trace.dir", cmd.Flags().Lookup("trace-dir"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}

			sessionID, err := cmd.Flags().GetString("session-id")
			if err != nil {
				return err
			}
			if sessionID == "" {
				return fmt.Errorf("--session-id is required")
			}
			logPath := filepath.Join(cfg.Trace.Dir, sessionID, trace.TextLogName)

			t, err := tail.TailFile(logPath, tail.Config{
				Follow:    true,
				ReOpen:    true,
				MustExist: true,
				Logger:    tail.DiscardingLogger,
			})
			if err != nil {
				return fmt.Errorf("failed to tail %s: %w", logPath, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				t.Stop()
			}()

			for line := range t.Lines {
				if line.Err != nil {
					return fmt.Errorf("tail error on %s: %w", logPath, line.Err)
				}
				fmt.Println(line.Text)
			}
			return nil
		},
	}

	tailCmd.Flags().String("session-id", "", "Session identifier to follow.")
	tailCmd.Flags().String("trace-dir", "", "Root directory for trace sessions. (Overrides config/env)")

	return tailCmd
}
