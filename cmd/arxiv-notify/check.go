package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-notify/internal/notify"
	"github.com/pdiddy/arxiv-notify/internal/secrets"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the notifier config file",
	Long: `Check parses the notifier config, verifies that every required key is
present, and prints the resolved settings with the API key masked. It
makes no network requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := currentSettings()
		cfg, err := notify.LoadConfig(s.ConfigPath, loadedSecrets, logger)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "config:       %s\n", s.ConfigPath)
		fmt.Fprintf(os.Stdout, "keywords:     %q\n", cfg.Keywords)
		fmt.Fprintf(os.Stdout, "history days: %d\n", cfg.HistoryDays)
		fmt.Fprintf(os.Stdout, "mailgun root: %s\n", cfg.Mailgun.Root)
		fmt.Fprintf(os.Stdout, "api key:      %s\n", secrets.Mask(cfg.Mailgun.APIKey))
		fmt.Fprintf(os.Stdout, "from:         %s\n", cfg.Mailgun.From)
		fmt.Fprintf(os.Stdout, "to:           %q\n", cfg.Mailgun.To)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
