package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/internal/archive"
	"github.com/pdiddy/arxiv-notify/internal/arxiv"
	"github.com/pdiddy/arxiv-notify/internal/httputil"
	"github.com/pdiddy/arxiv-notify/internal/mailgun"
	"github.com/pdiddy/arxiv-notify/internal/notify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch new papers for every keyword and email the digest",
	Long: `Run loads the notifier config, queries arXiv for each KEYWORD, renders
the HTML digest and sends it to every MAILGUN_TO recipient. Any error stops
the run: nothing is sent when a fetch fails, and a Mailgun failure stops
at the failing recipient.

Use --dry-run to print the digest instead of sending it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err := executeRun(ctx, currentSettings(), loadedSecrets, logger, dryRun, os.Stdout)
		return err
	},
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "print the digest HTML instead of emailing it")

	rootCmd.AddCommand(runCmd)
}

// executeRun performs one notification run. The notifier config is
// validated before any network request is made.
func executeRun(ctx context.Context, s settings, secretValues map[string]string, log *zap.Logger, dryRun bool, out io.Writer) (notify.Report, error) {
	cfg, err := notify.LoadConfig(s.ConfigPath, secretValues, log)
	if err != nil {
		return notify.Report{}, err
	}

	client := httputil.NewClient(s.Fetch.HTTPConfig)
	fetcher := arxiv.NewFetcher(client, s.Fetch, log)
	if s.ArxivURL != "" {
		fetcher.BaseURL = s.ArxivURL
	}

	runner := &notify.Runner{Fetcher: fetcher, Log: log}
	if !dryRun {
		runner.Sender = mailgun.NewSender(client, cfg.Mailgun, log)

		if s.ArchivePath != "" {
			store, err := archive.Open(s.ArchivePath)
			if err != nil {
				return notify.Report{}, err
			}
			defer store.Close()
			runner.Archive = store
		}
	}

	report, err := runner.Run(ctx, cfg)
	if err != nil {
		return report, err
	}

	if dryRun {
		fmt.Fprint(out, report.HTML)
		return report, nil
	}
	fmt.Fprintf(out, "sent %d article(s) across %d keyword(s) to %d recipient(s)\n",
		report.Articles(), len(report.Sections), report.Sent)
	return report, nil
}
