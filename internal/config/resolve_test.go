// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const fullConfig = `# arxiv-notify
KEYWORD = large language models
KEYWORD = diffusion
HISTORY_DAYS = 3
MAILGUN_ROOT = https://api.mailgun.net/v3/mg.example.com
MAILGUN_API_KEY = key-123
MAILGUN_FROM = arXiv Bot <bot@example.com>
MAILGUN_TO = alice@example.com
`

func mustParse(t *testing.T, text string) Map {
	t.Helper()
	m, err := ParseReader(strings.NewReader(text))
	require.NoError(t, err)
	return m
}

func TestResolve(t *testing.T) {
	cfg, err := Resolve(mustParse(t, fullConfig), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"large language models", "diffusion"}, cfg.Keywords)
	assert.Equal(t, 3, cfg.HistoryDays)
	assert.Equal(t, "https://api.mailgun.net/v3/mg.example.com", cfg.Mailgun.Root)
	assert.Equal(t, "key-123", cfg.Mailgun.APIKey)
	assert.Equal(t, "arXiv Bot <bot@example.com>", cfg.Mailgun.From)
	assert.Equal(t, []string{"alice@example.com"}, cfg.Mailgun.To)
}

func TestResolveDefaultHistoryDaysWarns(t *testing.T) {
	text := strings.Replace(fullConfig, "HISTORY_DAYS = 3\n", "", 1)
	core, logs := observer.New(zap.WarnLevel)

	cfg, err := Resolve(mustParse(t, text), zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.HistoryDays)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "history")
}

func TestResolveMissingKeys(t *testing.T) {
	tests := []struct {
		drop string
		want string
	}{
		{"KEYWORD", KeyKeyword},
		{"MAILGUN_ROOT", KeyMailgunRoot},
		{"MAILGUN_API_KEY", KeyMailgunAPIKey},
		{"MAILGUN_FROM", KeyMailgunFrom},
		{"MAILGUN_TO", KeyMailgunTo},
	}
	for _, tt := range tests {
		t.Run(tt.drop, func(t *testing.T) {
			var kept []string
			for _, line := range strings.Split(fullConfig, "\n") {
				if !strings.HasPrefix(line, tt.drop+" ") {
					kept = append(kept, line)
				}
			}
			_, err := Resolve(mustParse(t, strings.Join(kept, "\n")), zap.NewNop())
			var mk *MissingKeyError
			require.True(t, errors.As(err, &mk), "got %v", err)
			assert.Equal(t, tt.want, mk.Key)
		})
	}
}

func TestResolveMissingKeysReportedInOrder(t *testing.T) {
	_, err := Resolve(mustParse(t, "HISTORY_DAYS = 1\n"), zap.NewNop())
	var mk *MissingKeyError
	require.True(t, errors.As(err, &mk))
	assert.Equal(t, KeyKeyword, mk.Key)
}

func TestResolveInvalidHistoryDays(t *testing.T) {
	for _, days := range []string{"one", "-2", "1.5"} {
		text := strings.Replace(fullConfig, "HISTORY_DAYS = 3", "HISTORY_DAYS = "+days, 1)
		_, err := Resolve(mustParse(t, text), zap.NewNop())
		require.Error(t, err, days)
		assert.Contains(t, err.Error(), KeyHistoryDays)
	}
}
