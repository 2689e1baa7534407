package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/autoalloc/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryEntry is one audit record in command output.
type HistoryEntry struct {
	ID               string `json:"id"`
	RecordedAt       string `json:"recorded_at"`
	Allocator        string `json:"allocator"`
	RuleID           string `json:"rule_id"`
	Reason           string `json:"reason"`
	Fingerprint      string `json:"fingerprint"`
	CPUCores         int    `json:"cpu_cores"`
	TotalMemoryBytes uint64 `json:"total_memory_bytes"`
	OS               string `json:"os"`
	Arch             string `json:"arch"`
	ProbeDegraded    bool   `json:"probe_degraded"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded allocator decisions",
		Long: `List audit records, newest first. Equal fingerprints on adjacent
records mean the decision was stable across those runs.

Examples:
  autoalloc history --db ./autoalloc.db
  autoalloc history --db ./autoalloc.db --limit 10 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the audit database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records to list (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open audit database", err)
	}
	defer st.Close()

	records, err := st.List(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list decisions", err)
	}

	entries := make([]HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = HistoryEntry{
			ID:               rec.ID,
			RecordedAt:       rec.RecordedAt.Format(time.RFC3339),
			Allocator:        rec.Allocator,
			RuleID:           rec.RuleID,
			Reason:           rec.Reason,
			Fingerprint:      rec.Fingerprint,
			CPUCores:         rec.CPUCores,
			TotalMemoryBytes: rec.TotalMemoryBytes,
			OS:               rec.OS,
			Arch:             rec.Arch,
			ProbeDegraded:    rec.ProbeDegraded,
		}
	}

	if opts.Format == "json" {
		return formatter.SuccessJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "no recorded decisions")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%s  %-24s  rule=%s  fp=%.12s\n", e.RecordedAt, e.Allocator, e.RuleID, e.Fingerprint)
		if opts.Verbose {
			fmt.Fprintf(formatter.Writer, "    %s\n", e.Reason)
		}
	}
	return nil
}
