// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify drives one notification run: fetch every keyword, render
// the digest, send it, and optionally archive it. Any stage failure ends
// the run; nothing is sent if a fetch fails.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/internal/archive"
	"github.com/pdiddy/arxiv-notify/internal/config"
	"github.com/pdiddy/arxiv-notify/internal/digest"
	"github.com/pdiddy/arxiv-notify/internal/mailgun"
	"github.com/pdiddy/arxiv-notify/pkg/types"
)

// SecretAPIKey is the secrets file that may supply MAILGUN_API_KEY.
const SecretAPIKey = "mailgun-api-key"

// Fetcher returns the articles for terms within windowDays.
type Fetcher interface {
	Fetch(ctx context.Context, terms []string, windowDays int) ([]types.Article, error)
}

// Sender delivers a digest and reports how many recipients received it.
type Sender interface {
	Send(ctx context.Context, msg mailgun.Message) (int, error)
}

// Recorder archives a sent digest.
type Recorder interface {
	Record(ctx context.Context, run archive.Run) (int64, error)
}

// Runner runs the fetch-render-send pipeline.
type Runner struct {
	Fetcher Fetcher

	// Sender may be nil for a dry run: the digest is rendered but not sent.
	Sender Sender

	// Archive is optional.
	Archive Recorder

	// Now defaults to time.Now.
	Now func() time.Time

	Log *zap.Logger
}

// Report describes a finished run.
type Report struct {
	Subject  string
	HTML     string
	Sections []types.KeywordDigest
	Sent     int
	RunID    int64
}

// Articles returns the total number of articles in the digest.
func (r Report) Articles() int { return digest.Count(r.Sections) }

// LoadConfig parses the notifier config at path and validates it. A
// "mailgun-api-key" entry in secrets fills MAILGUN_API_KEY when the file
// does not set it.
func LoadConfig(path string, secrets map[string]string, log *zap.Logger) (types.NotifyConfig, error) {
	m, err := config.Parse(path)
	if err != nil {
		return types.NotifyConfig{}, err
	}
	if key, ok := secrets[SecretAPIKey]; ok {
		m = m.WithDefault(config.KeyMailgunAPIKey, key)
	}
	return config.Resolve(m, log)
}

// Run fetches each keyword of cfg in order, renders the digest and sends
// it. Fetch errors abort before anything is sent. A send error is
// returned along with the partial Report; recipients already sent to are
// counted in Report.Sent.
func (r *Runner) Run(ctx context.Context, cfg types.NotifyConfig) (Report, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	date := now()

	report := Report{Subject: digest.Subject(date)}

	for _, kw := range cfg.Keywords {
		r.Log.Info("fetching keyword", zap.String("keyword", kw), zap.Int("history_days", cfg.HistoryDays))
		articles, err := r.Fetcher.Fetch(ctx, []string{kw}, cfg.HistoryDays)
		if err != nil {
			return Report{}, fmt.Errorf("fetching keyword %q: %w", kw, err)
		}
		r.Log.Info("keyword fetched", zap.String("keyword", kw), zap.Int("articles", len(articles)))
		report.Sections = append(report.Sections, types.KeywordDigest{Keyword: kw, Articles: articles})
	}

	html, err := digest.RenderString(date, report.Sections)
	if err != nil {
		return Report{}, err
	}
	report.HTML = html

	if r.Sender == nil {
		r.Log.Info("dry run, digest not sent", zap.Int("articles", report.Articles()))
		return report, nil
	}

	sent, err := r.Sender.Send(ctx, mailgun.Message{Subject: report.Subject, Text: html, HTML: html})
	report.Sent = sent
	if err != nil {
		return report, err
	}

	if r.Archive != nil {
		id, err := r.Archive.Record(ctx, archive.Run{
			SentAt:     date,
			Subject:    report.Subject,
			Recipients: cfg.Mailgun.To,
			Sections:   report.Sections,
		})
		if err != nil {
			r.Log.Warn("archiving digest failed", zap.Error(err))
		} else {
			report.RunID = id
		}
	}

	return report, nil
}
