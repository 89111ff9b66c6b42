// File: cmd/report.go
package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
	"github.com/xkilldash9x/webtrail-cli/internal/trace"
)

// newReportCmd creates the `report` command, which rebuilds a session summary
// from a recorded JSON trace.
func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Summarizes a recorded session from its trace directory",
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

			sessionDir := filepath.Join(cfg.Trace.Dir, sessionID)
			summary, err := trace.ReadSessionSummary(sessionDir, sessionID)
			if err != nil {
				return err
			}

			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			if asJSON {
				out, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(summary, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode summary: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			renderSummary(summary)
			return nil
		},
	}

	reportCmd.Flags().String("session-id", "", "Session identifier to summarize.")
	reportCmd.Flags().String("trace-dir", "", "Root directory for trace sessions. (Overrides config/env)")
	reportCmd.Flags().Bool("json", false, "Emit the summary as JSON instead of text.")

	return reportCmd
}

func renderSummary(sum schemas.Summary) {
	fmt.Printf("Session:   %s\n", sum.SessionID)
	fmt.Printf("Finalized: %d (%d succeeded, %d failed)\n", sum.Finalized, sum.Succeeded, sum.Failed)
	if len(sum.IncompleteSeqs) > 0 {
		fmt.Printf("Incomplete sequence indices: %v\n", sum.IncompleteSeqs)
	}
	fmt.Printf("Elapsed:   %s\n", sum.TotalElapsed)

	if len(sum.ByType) > 0 {
		fmt.Println("\nActions by type:")
		types := make([]schemas.ActionType, 0, len(sum.ByType))
		for t := range sum.ByType {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, t := range types {
			fmt.Printf("  %-16s %d\n", t, sum.ByType[t])
		}
	}

	if len(sum.PerAction) > 0 {
		fmt.Println("\nTimings:")
		for _, timing := range sum.PerAction {
			fmt.Printf("  #%04d %-16s %s\n", timing.SequenceIndex, timing.ActionType, timing.Elapsed)
		}
	}
}
