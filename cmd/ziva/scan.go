package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/utils"
)

var (
	scanEndpoint string
	scanTimeout  time.Duration
	scanHTMLPath string
)

var scanCmd = &cobra.Command{
	Use:   "scan <link>",
	Short: "Check one shopping link",
	Long: `Send a product link to the trust engine and print the verdict.

The engine is the configured endpoint; pass --endpoint local to run it in
process against the live sites.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanEndpoint, "endpoint", "", `Engine endpoint URL, or "local" (overrides config)`)
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Scan timeout (0 = use config)")
	scanCmd.Flags().StringVar(&scanHTMLPath, "html", "", "Also write the result panel to this HTML file")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := loadApplication(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if scanEndpoint != "" {
		a.Config.Endpoint = scanEndpoint
	}
	cfg := a.Config.Server.Scan
	if scanTimeout > 0 {
		cfg.Timeout = scanTimeout
	}

	client, err := a.ScanClient()
	if err != nil {
		return fmt.Errorf("creating scan client: %w", err)
	}

	ui := newTerminalUI(cmd.OutOrStdout(), strings.TrimSpace(args[0]))
	orch, err := scan.NewOrchestrator(cfg, client, ui.UI(), a.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, runErr := orch.Run(ctx)
	if scanHTMLPath != "" && !errors.Is(runErr, scan.ErrEmptyInput) {
		if err := savePanel(ui, scanHTMLPath); err != nil {
			return err
		}
	}
	return runErr
}

func savePanel(ui *terminalUI, path string) error {
	f, err := os.Create(utils.ExpandHome(path))
	if err != nil {
		return fmt.Errorf("writing panel: %w", err)
	}
	class, html := ui.Panel()
	if err := writePanelPage(f, class, html); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing panel: %w", err)
	}
	return f.Close()
}
