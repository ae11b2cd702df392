// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/pkg/types"
)

// Recognized keys.
const (
	KeyKeyword       = "KEYWORD"
	KeyHistoryDays   = "HISTORY_DAYS"
	KeyMailgunRoot   = "MAILGUN_ROOT"
	KeyMailgunAPIKey = "MAILGUN_API_KEY"
	KeyMailgunFrom   = "MAILGUN_FROM"
	KeyMailgunTo     = "MAILGUN_TO"
)

// DefaultHistoryDays is used when HISTORY_DAYS is absent.
const DefaultHistoryDays = "1"

// MissingKeyError reports a required key that is absent from the config file.
type MissingKeyError struct {
	Key  string
	Hint string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required config key %s: %s", e.Key, e.Hint)
}

// requiredKeys lists the mandatory keys in validation order.
var requiredKeys = []struct {
	key  string
	hint string
}{
	{KeyKeyword, "add one or more keywords using the KEYWORD field"},
	{KeyMailgunRoot, "specify the Mailgun API root using the MAILGUN_ROOT field"},
	{KeyMailgunAPIKey, "specify the Mailgun API key using the MAILGUN_API_KEY field"},
	{KeyMailgunFrom, "specify the sender address using the MAILGUN_FROM field"},
	{KeyMailgunTo, "specify one or more recipients using the MAILGUN_TO field"},
}

// Resolve validates m and converts it into a NotifyConfig. It fails on the
// first missing required key. An absent HISTORY_DAYS falls back to
// DefaultHistoryDays with a warning.
func Resolve(m Map, log *zap.Logger) (types.NotifyConfig, error) {
	for _, rk := range requiredKeys {
		if !m.Has(rk.key) {
			return types.NotifyConfig{}, &MissingKeyError{Key: rk.key, Hint: rk.hint}
		}
	}

	days := DefaultHistoryDays
	if v, ok := m.Get(KeyHistoryDays); ok {
		days = v.String()
	} else {
		log.Warn("no history length configured, using default",
			zap.String("key", KeyHistoryDays),
			zap.String("default", DefaultHistoryDays))
	}
	historyDays, err := strconv.Atoi(days)
	if err != nil {
		return types.NotifyConfig{}, fmt.Errorf("invalid %s %q: %w", KeyHistoryDays, days, err)
	}
	if historyDays < 0 {
		return types.NotifyConfig{}, fmt.Errorf("invalid %s %q: must not be negative", KeyHistoryDays, days)
	}

	keywords, _ := m.Get(KeyKeyword)
	root, _ := m.Get(KeyMailgunRoot)
	apiKey, _ := m.Get(KeyMailgunAPIKey)
	from, _ := m.Get(KeyMailgunFrom)
	to, _ := m.Get(KeyMailgunTo)

	return types.NotifyConfig{
		Keywords:    keywords.Strings(),
		HistoryDays: historyDays,
		Mailgun: types.MailgunConfig{
			Root:   root.String(),
			APIKey: apiKey.String(),
			From:   from.String(),
			To:     to.Strings(),
		},
	}, nil
}
