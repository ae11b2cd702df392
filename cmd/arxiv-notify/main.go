// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-notify CLI: it queries
// arXiv for recently updated papers matching configured keywords and
// emails an HTML digest through Mailgun.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/internal/arxiv"
	"github.com/pdiddy/arxiv-notify/internal/logging"
	"github.com/pdiddy/arxiv-notify/internal/secrets"
	"github.com/pdiddy/arxiv-notify/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultConfigPath = "arxivnotify.cfg"
	defaultTimeout    = 60 * time.Second
	defaultUserAgent  = "arxiv-notify/0.1"
	defaultSecretsDir = ".secrets/"
)

var (
	logger        = zap.NewNop()
	loadedSecrets map[string]string
)

// settings are the runtime options resolved from flags, environment and
// the optional settings file.
type settings struct {
	ConfigPath  string
	ArchivePath string
	ArxivURL    string
	Fetch       types.FetchConfig
}

func currentSettings() settings {
	return settings{
		ConfigPath:  viper.GetString("config"),
		ArchivePath: viper.GetString("archive"),
		ArxivURL:    viper.GetString("arxiv_url"),
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("timeout"),
				UserAgent: viper.GetString("user_agent"),
			},
			PageDelay: viper.GetDuration("page_delay"),
			MaxPages:  viper.GetInt("max_pages"),
		},
	}
}

// rootCmd is the base command for the arxiv-notify CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-notify",
	Short: "Email a digest of new arXiv papers matching your keywords",
	Long: `arxiv-notify searches arXiv for papers updated within the last HISTORY_DAYS
days that match each KEYWORD in the notifier config file, renders an HTML
digest, and sends it to every MAILGUN_TO recipient through Mailgun.

The notifier config is a flat "KEY = value" file (default arxivnotify.cfg).
Runtime options can also be set in arxiv-notify.yaml or through
ARXIV_NOTIFY_* environment variables; a .env file is loaded first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Config{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		})
		if err != nil {
			return err
		}
		logger = l

		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using settings file", zap.String("path", used))
		}

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initSettings)

	flags := rootCmd.PersistentFlags()
	flags.String("settings", "", "settings file (default: ./arxiv-notify.yaml or ~/.config/arxiv-notify/config.yaml)")
	flags.StringP("config", "c", defaultConfigPath, "notifier config file (KEY = value format)")
	flags.String("archive", "", "SQLite file recording sent digests (disabled when empty)")
	flags.String("secrets-dir", defaultSecretsDir, "directory of secret files (mailgun-api-key)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "console", "log format: console or json")
	flags.Duration("timeout", defaultTimeout, "HTTP request timeout (0 disables)")
	flags.String("user-agent", defaultUserAgent, "User-Agent header for HTTP requests")
	flags.Duration("page-delay", arxiv.DefaultPageDelay, "pause after each arXiv page request")
	flags.Int("max-pages", arxiv.DefaultMaxPages, "maximum arXiv pages per keyword (0 is unbounded)")
	flags.String("arxiv-url", arxiv.DefaultBaseURL, "arXiv API endpoint")
	_ = flags.MarkHidden("arxiv-url")

	for key, flag := range map[string]string{
		"config":      "config",
		"archive":     "archive",
		"secrets_dir": "secrets-dir",
		"log_level":   "log-level",
		"log_format":  "log-format",
		"timeout":     "timeout",
		"user_agent":  "user-agent",
		"page_delay":  "page-delay",
		"max_pages":   "max-pages",
		"arxiv_url":   "arxiv-url",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initSettings() {
	_ = godotenv.Load()

	settingsFile, _ := rootCmd.PersistentFlags().GetString("settings")
	if settingsFile != "" {
		viper.SetConfigFile(settingsFile)
	} else {
		viper.SetConfigName("arxiv-notify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arxiv-notify"))
		}
	}

	viper.SetEnvPrefix("ARXIV_NOTIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing default settings file is normal; anything else is worth a warning.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if settingsFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading settings:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
