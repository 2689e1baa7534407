package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/autoalloc/internal/hardware"
	"github.com/roach88/autoalloc/internal/platform"
	"github.com/roach88/autoalloc/internal/policy"
)

// RecommendOptions holds flags for the recommend command.
type RecommendOptions struct {
	*RootOptions
	PolicyPath string
}

// Recommendation is the recommend command's output payload.
type Recommendation struct {
	Allocator string `json:"allocator"`
	RuleID    string `json:"rule_id"`
	Reason    string `json:"reason"`
}

// NewRecommendCommand creates the recommend command.
func NewRecommendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecommendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Evaluate the rule table fresh for this machine",
		Long: `Re-run the selection rule table against the frozen hardware snapshot
and print what it recommends right now. Hardware is not re-probed; the
evaluation is redone fresh, so a binding pinned by override or a policy
file with different constants can diverge from the bound backend.

Examples:
  autoalloc recommend
  autoalloc recommend --policy policy.yaml
  autoalloc recommend --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PolicyPath, "policy", "", "path to a policy config YAML (optional)")

	return cmd
}

func runRecommend(opts *RecommendOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadPolicyConfig(opts.PolicyPath)
	if err != nil {
		return err
	}

	dec, err := effectiveDecision(cfg)
	if err != nil {
		return err
	}

	rec := Recommendation{
		Allocator: dec.Chosen.String(),
		RuleID:    dec.RuleID,
		Reason:    dec.Reason,
	}

	if opts.Format == "json" {
		return formatter.SuccessJSON(rec)
	}

	fmt.Fprintf(formatter.Writer, "Recommended: %s\n", rec.Allocator)
	fmt.Fprintf(formatter.Writer, "Rule:        %s\n", rec.RuleID)
	fmt.Fprintf(formatter.Writer, "Reason:      %s\n", rec.Reason)
	return nil
}

// loadPolicyConfig returns the defaults when no path is given.
func loadPolicyConfig(path string) (policy.Config, error) {
	if path == "" {
		return policy.DefaultConfig(), nil
	}
	cfg, err := policy.Load(path)
	if err != nil {
		return policy.Config{}, WrapExitError(ExitCommandError, "failed to load policy config", err)
	}
	return cfg, nil
}

// effectiveDecision evaluates the configured policy against this build and
// the frozen snapshot. A pinned_backend in the config wins over the table,
// mirroring what binding under that config would do.
func effectiveDecision(cfg policy.Config) (policy.Decision, error) {
	hw := hardware.Probe()

	pinned, ok, err := cfg.Pinned()
	if err != nil {
		return policy.Decision{}, WrapExitError(ExitCommandError, "invalid policy config", err)
	}
	if ok {
		return policy.PinnedDecision(pinned, "policy config", hw), nil
	}

	return policy.New(cfg).Decide(platform.Resolve(), hw), nil
}
