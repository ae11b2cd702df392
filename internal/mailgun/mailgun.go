// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailgun sends the digest through the Mailgun HTTP API, one
// message per recipient.
package mailgun

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/pkg/types"
)

// maxErrorBody caps how much of a failed response body is kept in a SendError.
const maxErrorBody = 4 << 10

// Message is one digest email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// SendError reports a recipient the API refused or could not be reached for.
type SendError struct {
	Recipient  string
	StatusCode int
	Body       string
	Err        error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sending to %s: %v", e.Recipient, e.Err)
	}
	return fmt.Sprintf("sending to %s: mailgun returned HTTP %d: %s", e.Recipient, e.StatusCode, e.Body)
}

func (e *SendError) Unwrap() error { return e.Err }

// Sender posts messages to a Mailgun domain.
type Sender struct {
	Client *http.Client
	cfg    types.MailgunConfig
	log    *zap.Logger
}

// NewSender returns a Sender for cfg.
func NewSender(client *http.Client, cfg types.MailgunConfig, log *zap.Logger) *Sender {
	return &Sender{Client: client, cfg: cfg, log: log}
}

// Send delivers msg to every configured recipient in order. It stops at
// the first failure; recipients already sent to are not recalled. It
// returns the number of recipients that were sent to.
func (s *Sender) Send(ctx context.Context, msg Message) (int, error) {
	endpoint := strings.TrimRight(s.cfg.Root, "/") + "/messages"

	for i, to := range s.cfg.To {
		if err := s.sendOne(ctx, endpoint, to, msg); err != nil {
			return i, err
		}
		s.log.Info("digest sent", zap.String("to", to))
	}
	return len(s.cfg.To), nil
}

func (s *Sender) sendOne(ctx context.Context, endpoint, to string, msg Message) error {
	form := url.Values{
		"from":    {s.cfg.From},
		"to":      {to},
		"subject": {msg.Subject},
		"text":    {msg.Text},
		"html":    {msg.HTML},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &SendError{Recipient: to, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", s.cfg.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return &SendError{Recipient: to, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &SendError{Recipient: to, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
