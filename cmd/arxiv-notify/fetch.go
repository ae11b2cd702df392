package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-notify/internal/arxiv"
	"github.com/pdiddy/arxiv-notify/internal/httputil"
	"github.com/pdiddy/arxiv-notify/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [terms...]",
	Short: "Query arXiv and print matching papers without sending email",
	Long: `Fetch runs a single arXiv search for the given terms (joined with OR)
and prints every paper updated within the window. No config file is
needed. With no terms, the search is for the empty phrase.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		yamlOutput, _ := cmd.Flags().GetBool("yaml")
		if days < 0 {
			return fmt.Errorf("--days must not be negative")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s := currentSettings()
		fetcher := arxiv.NewFetcher(httputil.NewClient(s.Fetch.HTTPConfig), s.Fetch, logger)
		if s.ArxivURL != "" {
			fetcher.BaseURL = s.ArxivURL
		}

		articles, err := fetcher.Fetch(ctx, args, days)
		if err != nil {
			return err
		}

		switch {
		case jsonOutput:
			return formatJSON(articles, os.Stdout)
		case yamlOutput:
			return formatYAML(articles, os.Stdout)
		default:
			formatTable(articles, os.Stdout)
			return nil
		}
	},
}

func init() {
	fetchCmd.Flags().Int("days", 1, "recency window in days")
	fetchCmd.Flags().Bool("json", false, "output results as JSON")
	fetchCmd.Flags().Bool("yaml", false, "output results as YAML")

	rootCmd.AddCommand(fetchCmd)
}

// formatTable writes articles as a human-readable table to w.
func formatTable(articles []types.Article, w io.Writer) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %s\n", "#", "Title", "Updated", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, a := range articles {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %s\n",
			i+1, truncate(a.Title, 60), a.Updated.Format("2006-01-02 15:04"), a.Link)
	}
	fmt.Fprintf(w, "\n%d results\n", len(articles))
}

func formatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatYAML(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
