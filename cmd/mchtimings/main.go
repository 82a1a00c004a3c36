package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mscrnt/mchtimings/internal/version"
	"github.com/mscrnt/mchtimings/pkg/chipset/i915"
	"github.com/mscrnt/mchtimings/pkg/decoder"
)

var (
	// Build variables set by ldflags
	buildVersion string
	buildCommit  string
	buildTime    string
)

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &decodeOptions{}

	rootCmd := &cobra.Command{
		Use:   "mchtimings [flags] [NNN=VALUE ...]",
		Short: "Decode Intel 91x DRAM timing registers",
		Long: `mchtimings decodes the DRAM timing registers of the Intel 910/915 memory
controller (C0DRT0, C0DRT1, C0DRT2, C0DRC0) into DDR2 timings.

Register values come from the documented defaults, from NNN=VALUE arguments
(register offset and value in hex), or from a live read of MCHBAR with
RWEverything (--with-read, administrator rights required).

Examples:
  # Decode the defaults
  mchtimings

  # Decode values copied from RWEverything
  mchtimings 110=88BC10D8 114=03408110

  # Read the live registers and write an HTML report
  mchtimings --with-read --format html -o timings.html`,
		Version:       version.GetVersion(buildVersion, buildCommit, buildTime),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.Context(), opts, args, cmd.OutOrStdout())
		},
	}
	addDecodeFlags(rootCmd, opts)

	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(registersCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func decodeCmd() *cobra.Command {
	opts := &decodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode [flags] [NNN=VALUE ...]",
		Short: "Decode the timing registers (default command)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.Context(), opts, args, cmd.OutOrStdout())
		},
	}
	addDecodeFlags(cmd, opts)

	return cmd
}

func registersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registers",
		Short: "List the known registers and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			cat := i915.NewCatalog()

			for _, reg := range cat.Registers() {
				fmt.Fprintf(w, "0x%03X  %-7s default 0x%08X  (MCHBAR+0x%03X = 0x%08X)\n",
					reg.Address, reg.Name, reg.Default, reg.Address, i915.MCHBAR+reg.Address)
				for _, f := range reg.Fields {
					fmt.Fprintf(w, "  %-6s %-5s %s\n", f.Bits, f.ID, f.Description)
				}
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w, "Derived:")
			for _, d := range i915.Derivations(i915.DefaultWTR, i915.DefaultWR) {
				fmt.Fprintf(w, "  %s\n", d)
			}
			fmt.Fprintf(w, "Summary: %s\n", summaryLegend())
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion(buildVersion, buildCommit, buildTime))
		},
	}
}

func summaryLegend() string {
	return strings.Join(decoder.PrimaryIDs, "-") + " / " + strings.Join(decoder.SecondaryIDs, "-")
}
