package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-notify/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the catalog fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageDelay is the pause after every page request (default 3s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// MaxPages bounds pagination for a single fetch. Zero means unbounded.
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// MailgunConfig holds the outbound email settings read from the notifier
// config file (MAILGUN_* keys).
type MailgunConfig struct {
	// Root is the Mailgun domain API root, e.g.
	// "https://api.mailgun.net/v3/mg.example.com".
	Root string `json:"root" yaml:"root"`

	// APIKey is the Mailgun private API key.
	APIKey string `json:"-" yaml:"-"`

	// From is the sender address.
	From string `json:"from" yaml:"from"`

	// To lists the recipients; one message is sent per recipient.
	To []string `json:"to" yaml:"to"`
}

// NotifyConfig is the validated notifier configuration. It is built once
// per run and passed explicitly to the fetch and send stages.
type NotifyConfig struct {
	// Keywords are searched one at a time, in order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// HistoryDays is the recency window in days.
	HistoryDays int `json:"history_days" yaml:"history_days"`

	Mailgun MailgunConfig `json:"mailgun" yaml:"mailgun"`
}
