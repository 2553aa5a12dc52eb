package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/scamguard/internal/classify"
	"github.com/nao1215/scamguard/internal/config"
	"github.com/nao1215/scamguard/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a link or a file with a multi-engine scanner",
		Long: `Scan submits a link or a file to VirusTotal and waits for the analysis
to finish. The report lists how many engines found the artifact malicious,
suspicious, harmless or undetected, with a link to the full report.

A failed or timed-out scan is reported as such, with a pointer to check the
artifact manually; it is never reported as clean.

Requires VIRUSTOTAL_API_TOKEN.

Examples:
  scamguard scan link https://example.com/login
  scamguard scan file ./invoice.pdf
  scamguard scan link --json example.com`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "link <url>",
		Short: "Scan a link",
		Args:  cobra.ExactArgs(1),
		RunE:  runScanLinkCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "file <path>",
		Short: "Scan a file (up to 32 MB)",
		Args:  cobra.ExactArgs(1),
		RunE:  runScanFileCmd,
	})

	return cmd
}

// runScanLinkCmd executes "scan link".
func runScanLinkCmd(cmd *cobra.Command, args []string) error {
	link, ok := classify.NormalizeLink(args[0])
	if !ok {
		return fmt.Errorf("not a link: %q", args[0])
	}
	return runScan(cmd, "link", link, link)
}

// runScanFileCmd executes "scan file".
func runScanFileCmd(cmd *cobra.Command, args []string) error {
	return runScan(cmd, "file", args[0], filepath.Base(args[0]))
}

func runScan(cmd *cobra.Command, kind, target, label string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, a, cleanup, err := startApp(cfg, config.CredentialVirusTotal)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(cmd.ErrOrStderr(), "Scanning %s %s...\n", kind, label)

	scanner := a.Scanner()
	scanFn := scanner.ScanLink
	if kind == "file" {
		scanFn = scanner.ScanFile
	}
	verdict, scanErr := scanFn(ctx, target)

	if err := writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteScan(report.NewScanReport(kind, label, verdict, scanErr))
		return err
	}); err != nil {
		return err
	}
	if scanErr != nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}
	return nil
}
