package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-notify/internal/archive"
	"github.com/pdiddy/arxiv-notify/internal/digest"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List digests recorded in the archive",
	Long: `History reads the SQLite archive written by "run --archive" and lists
recent digests. With --run ID it re-renders that digest as HTML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := currentSettings().ArchivePath
		if path == "" {
			return fmt.Errorf("no archive configured: pass --archive or set ARXIV_NOTIFY_ARCHIVE")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetInt64("run")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		yamlOutput, _ := cmd.Flags().GetBool("yaml")

		store, err := archive.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()

		if runID > 0 {
			run, err := store.Get(ctx, runID)
			if err != nil {
				return err
			}
			sections, err := store.Sections(ctx, runID)
			if err != nil {
				return err
			}
			return digest.Render(os.Stdout, run.SentAt, sections)
		}

		runs, err := store.Recent(ctx, limit)
		if err != nil {
			return err
		}

		switch {
		case jsonOutput:
			return formatJSON(runs, os.Stdout)
		case yamlOutput:
			return formatYAML(runs, os.Stdout)
		}

		if len(runs) == 0 {
			fmt.Println("No archived digests.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-6s  %-20s  %-8s  %s\n", "ID", "Sent", "Articles", "Recipients")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
		for _, r := range runs {
			fmt.Fprintf(os.Stdout, "%-6d  %-20s  %-8d  %s\n",
				r.ID, r.SentAt.Local().Format("2006-01-02 15:04"), r.Articles, strings.Join(r.Recipients, ", "))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "re-render the digest of this run ID")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().Bool("yaml", false, "output as YAML")

	rootCmd.AddCommand(historyCmd)
}
