package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/autoalloc"
	"github.com/roach88/autoalloc/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	PolicyPath string
	Record     bool
	Database   string
}

// CheckResult is the check command's output payload.
type CheckResult struct {
	Optimal     bool   `json:"optimal"`
	Bound       string `json:"bound"`
	Recommended string `json:"recommended"`
	Suggestion  string `json:"suggestion,omitempty"`

	// Audit fields, present only with --record.
	RecordID    string `json:"record_id,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Drifted     *bool  `json:"drifted,omitempty"` // vs the previous audit record
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the bound allocator matches the recommendation",
		Long: `Compare the bound allocator against a fresh rule-table evaluation.
Exit code 0 when they agree, 1 when they diverge (with a suggestion naming
the recommended backend), 2 on command errors.

With --record, the bound decision is appended to the audit database and
its fingerprint compared against the previous record to flag drift.

Examples:
  autoalloc check
  autoalloc check --policy policy.yaml
  autoalloc check --record --db ./autoalloc.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PolicyPath, "policy", "", "path to a policy config YAML (optional)")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "append the bound decision to the audit database")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the audit database (required with --record)")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Record && opts.Database == "" {
		return NewExitError(ExitCommandError, "--record requires --db")
	}

	cfg, err := loadPolicyConfig(opts.PolicyPath)
	if err != nil {
		return err
	}

	bound := autoalloc.GetAllocatorInfo()
	dec, err := effectiveDecision(cfg)
	if err != nil {
		return err
	}

	result := CheckResult{
		Optimal:     bound.AllocatorType == dec.Chosen,
		Bound:       bound.AllocatorType.String(),
		Recommended: dec.Chosen.String(),
	}
	if !result.Optimal {
		result.Suggestion = fmt.Sprintf("current: %s, recommended: %s (%s)",
			bound.AllocatorType, dec.Chosen, dec.Reason)
	}

	if opts.Record {
		if err := recordDecision(cmd.Context(), opts.Database, bound, &result); err != nil {
			return err
		}
	}

	if opts.Format == "json" {
		if err := formatter.SuccessJSON(result); err != nil {
			return err
		}
	} else {
		renderCheck(formatter, result)
	}

	if !result.Optimal {
		return NewExitError(ExitFailure, "bound allocator is not the recommended one")
	}
	return nil
}

// recordDecision appends the bound decision to the audit log and fills the
// result's audit fields. Drift compares against the record that was latest
// before this append.
func recordDecision(ctx context.Context, dbPath string, bound autoalloc.AllocatorInfo, result *CheckResult) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open audit database", err)
	}
	defer st.Close()

	decision := store.Decision{
		Allocator:        bound.AllocatorType.String(),
		RuleID:           bound.RuleID,
		Reason:           bound.Reason,
		CPUCores:         bound.SystemInfo.CPUCores,
		TotalMemoryBytes: bound.SystemInfo.TotalMemoryBytes,
		OS:               bound.SystemInfo.OS,
		Arch:             bound.SystemInfo.Arch,
		ProbeDegraded:    bound.SystemInfo.ProbeDegraded,
	}

	previous, err := st.Latest(ctx)
	hasPrevious := err == nil
	if err != nil && !errors.Is(err, store.ErrEmpty) {
		return WrapExitError(ExitCommandError, "failed to read audit database", err)
	}

	rec, err := st.Append(ctx, decision)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record decision", err)
	}

	result.RecordID = rec.ID
	result.Fingerprint = rec.Fingerprint
	if hasPrevious {
		drifted := previous.Fingerprint != rec.Fingerprint
		result.Drifted = &drifted
	}
	return nil
}

func renderCheck(f *OutputFormatter, result CheckResult) {
	if result.Optimal {
		fmt.Fprintf(f.Writer, "OK: bound allocator %s matches the recommendation\n", result.Bound)
	} else {
		fmt.Fprintf(f.Writer, "MISMATCH: %s\n", result.Suggestion)
	}

	if result.RecordID != "" {
		fmt.Fprintf(f.Writer, "Recorded: %s (fingerprint %s)\n", result.RecordID, result.Fingerprint)
		switch {
		case result.Drifted == nil:
			fmt.Fprintln(f.Writer, "Drift:    first record, nothing to compare")
		case *result.Drifted:
			fmt.Fprintln(f.Writer, "Drift:    decision changed since the previous record")
		default:
			fmt.Fprintln(f.Writer, "Drift:    none, matches the previous record")
		}
	}
}
