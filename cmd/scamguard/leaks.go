package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/scamguard/internal/config"
	"github.com/nao1215/scamguard/internal/report"
)

// NewLeaksCmd creates the leaks command.
func NewLeaksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaks [value]",
		Short: "Search leak databases for an e-mail, phone number or password",
		Long: `Leaks classifies the value as an e-mail address, a phone number or a
credential and searches the matching leak databases concurrently.

Passwords are checked with a k-anonymity range query: only the first five
characters of the SHA-1 hash leave this machine. A provider that fails is
skipped, so an empty result means "nothing found in the providers that
answered".

Requires LEAKLOOKUP_PUBLIC_KEY: phone numbers are only covered by that
provider.

When no value is given it is read from the first line of standard input,
which keeps passwords out of the shell history.

Examples:
  # Check an e-mail address
  scamguard leaks user@example.com

  # Check a password without putting it on the command line
  scamguard leaks < password.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLeaksCmd,
	}
}

// runLeaksCmd executes the leaks command.
func runLeaksCmd(cmd *cobra.Command, args []string) error {
	value, err := leakValue(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, a, cleanup, err := startApp(cfg, config.CredentialLeakLookup)
	if err != nil {
		return err
	}
	defer cleanup()

	item, records := a.Leaks().SearchRaw(ctx, value)
	return writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteLeaks(report.NewLeakReport(item, records))
		return err
	})
}

// leakValue returns the value to check from args or the first line of r.
func leakValue(r io.Reader, args []string) (string, error) {
	var value string
	if len(args) > 0 {
		value = args[0]
	} else {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read value: %w", err)
		}
		value = line
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("no value provided (pass it as an argument or on standard input)")
	}
	return value, nil
}
