package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for scamguard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scamguard",
		Short: "Check leaks, links, files and conversations for fraud",
		Long: `scamguard answers "is this dangerous?" for four kinds of input:

- personal data (e-mail, phone number, password) searched in leak databases
- links and files submitted to a multi-engine scanner
- conversations classified for scam risk by a language model

Credentials are read from the configuration file, a .env file or the
environment (VIRUSTOTAL_API_TOKEN, LEAKLOOKUP_PUBLIC_KEY, AI_TUNNEL_TOKEN).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .scamguard.yaml in current, XDG config or home directory)")
	cmd.PersistentFlags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.PersistentFlags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.PersistentFlags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Add subcommands
	cmd.AddCommand(NewLeaksCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
