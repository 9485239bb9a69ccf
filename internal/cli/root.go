// Package cli defines the costlens command tree.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "costlens",
		Short: "Cost report ingestion and aggregation",
		Long: "costlens ingests hierarchical cost report workbooks, resolves item codes,\n" +
			"and serves roll-up, variance, cashflow and vendor analytics over HTTP or CSV.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Accept snake_case flag spellings alongside the documented kebab-case.
	root.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	root.AddCommand(newProcessCmd())
	root.AddCommand(newServeCmd())
	return root
}
