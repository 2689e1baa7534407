package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/autoalloc"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the bound allocator decision",
		Long: `Show which allocator backend this process bound, the reason string
with the matched rule, and the hardware snapshot the decision was made on.

The decision is frozen at first use; info never recomputes it.

Examples:
  autoalloc info
  autoalloc info --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, cmd)
		},
	}

	return cmd
}

func runInfo(opts *InfoOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	info := autoalloc.GetAllocatorInfo()

	if opts.Format == "json" {
		return formatter.SuccessJSON(info)
	}

	renderInfo(formatter.Writer, info)
	return nil
}

// renderInfo writes the human layout shared by info and check.
func renderInfo(w io.Writer, info autoalloc.AllocatorInfo) {
	sys := info.SystemInfo
	fmt.Fprintf(w, "Allocator: %s\n", info.AllocatorType)
	fmt.Fprintf(w, "Rule:      %s\n", info.RuleID)
	fmt.Fprintf(w, "Reason:    %s\n", info.Reason)
	fmt.Fprintln(w, "System:")
	fmt.Fprintf(w, "  OS/Arch:        %s/%s\n", sys.OS, sys.Arch)
	fmt.Fprintf(w, "  CPU cores:      %d\n", sys.CPUCores)
	fmt.Fprintf(w, "  Total memory:   %s\n", autoalloc.FormatMemorySize(sys.TotalMemoryBytes))
	fmt.Fprintf(w, "  WASM:           %t\n", sys.IsWASM)
	fmt.Fprintf(w, "  Debug build:    %t\n", sys.IsDebug)
	fmt.Fprintf(w, "  Probe degraded: %t\n", sys.ProbeDegraded)
}
