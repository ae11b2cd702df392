package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/internal/archive"
	"github.com/pdiddy/arxiv-notify/internal/arxiv"
	"github.com/pdiddy/arxiv-notify/internal/config"
	"github.com/pdiddy/arxiv-notify/pkg/types"
)

const arxivPage = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
  <id>http://arxiv.org/api/test</id>
  <updated>2024-01-10T00:00:00Z</updated>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <updated>2024-01-10T00:00:00Z</updated>
    <title>Fresh Paper</title>
    <summary>Fresh abstract.</summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2312.00002v1</id>
    <updated>2024-01-08T00:00:00Z</updated>
    <title>Stale Paper</title>
    <summary>Stale abstract.</summary>
  </entry>
</feed>
`

type servers struct {
	arxiv, mailgun      *httptest.Server
	arxivHits, mailHits atomic.Int32
}

func newServers(t *testing.T) *servers {
	t.Helper()
	s := &servers{}
	s.arxiv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.arxivHits.Add(1)
		fmt.Fprint(w, arxivPage)
	}))
	s.mailgun = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.mailHits.Add(1)
		fmt.Fprint(w, `{"message":"Queued"}`)
	}))
	t.Cleanup(s.arxiv.Close)
	t.Cleanup(s.mailgun.Close)
	return s
}

func (s *servers) settings(cfgPath string) settings {
	return settings{
		ConfigPath: cfgPath,
		ArxivURL:   s.arxiv.URL,
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "arxiv-notify/test"},
			PageDelay:  time.Millisecond,
			MaxPages:   5,
		},
	}
}

func writeNotifyConfig(t *testing.T, s *servers, omit string) string {
	t.Helper()
	lines := []string{
		"# test config",
		"KEYWORD = diffusion",
		"KEYWORD = quantum",
		"HISTORY_DAYS = 1",
		"MAILGUN_ROOT = " + s.mailgun.URL + "/v3/mg.example.com",
		"MAILGUN_API_KEY = key-test",
		"MAILGUN_FROM = bot@example.com",
		"MAILGUN_TO = a@example.com",
		"MAILGUN_TO = b@example.com",
	}
	var kept []string
	for _, l := range lines {
		if omit != "" && strings.HasPrefix(l, omit+" ") {
			continue
		}
		kept = append(kept, l)
	}
	path := filepath.Join(t.TempDir(), "arxivnotify.cfg")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(kept, "\n")+"\n"), 0o644))
	return path
}

func TestExecuteRunMissingRecipientsMakesNoRequests(t *testing.T) {
	srv := newServers(t)
	cfgPath := writeNotifyConfig(t, srv, "MAILGUN_TO")

	var out bytes.Buffer
	_, err := executeRun(context.Background(), srv.settings(cfgPath), nil, zap.NewNop(), false, &out)

	var mk *config.MissingKeyError
	require.True(t, errors.As(err, &mk), "got %v", err)
	assert.Equal(t, config.KeyMailgunTo, mk.Key)
	assert.Zero(t, srv.arxivHits.Load())
	assert.Zero(t, srv.mailHits.Load())
}

func TestExecuteRunSendsToEveryRecipient(t *testing.T) {
	srv := newServers(t)
	cfgPath := writeNotifyConfig(t, srv, "")
	s := srv.settings(cfgPath)
	s.ArchivePath = filepath.Join(t.TempDir(), "archive.db")

	var out bytes.Buffer
	report, err := executeRun(context.Background(), s, nil, zap.NewNop(), false, &out)
	require.NoError(t, err)

	assert.Equal(t, int32(2), srv.arxivHits.Load(), "one page per keyword")
	assert.Equal(t, int32(2), srv.mailHits.Load(), "one message per recipient")
	assert.Equal(t, 2, report.Articles())
	assert.Contains(t, out.String(), "sent 2 article(s) across 2 keyword(s) to 2 recipient(s)")

	store, err := archive.Open(s.ArchivePath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Articles)
}

func TestExecuteRunDryRunDoesNotSend(t *testing.T) {
	srv := newServers(t)
	cfgPath := writeNotifyConfig(t, srv, "")

	var out bytes.Buffer
	_, err := executeRun(context.Background(), srv.settings(cfgPath), nil, zap.NewNop(), true, &out)
	require.NoError(t, err)

	assert.Zero(t, srv.mailHits.Load())
	assert.Contains(t, out.String(), "<b><u>Fresh Paper</u></b>")
	assert.NotContains(t, out.String(), "Stale Paper")
}

func TestExecuteRunFetchFailureSendsNothing(t *testing.T) {
	srv := newServers(t)
	cfgPath := writeNotifyConfig(t, srv, "")
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()
	s := srv.settings(cfgPath)
	s.ArxivURL = failing.URL

	_, err := executeRun(context.Background(), s, nil, zap.NewNop(), false, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, arxiv.ErrTransport))
	assert.Zero(t, srv.mailHits.Load())
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := newScheduler(context.Background(), "every tuesday", zap.NewNop(), func(context.Context) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")

	c, err := newScheduler(context.Background(), defaultSchedule, zap.NewNop(), func(context.Context) {})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	formatTable(nil, &buf)
	assert.Equal(t, "No results found.\n", buf.String())

	buf.Reset()
	formatTable([]types.Article{{
		Title:   strings.Repeat("long title ", 10),
		Link:    "http://arxiv.org/abs/1",
		Updated: time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC),
	}}, &buf)
	out := buf.String()
	assert.Contains(t, out, "2024-01-10 09:30")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "1 results")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Schrödinger", truncate("Schrödinger", 11))

	got := truncate("Schrödinger équations", 10)
	assert.Equal(t, "Schrödi...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 10, utf8.RuneCountInString(got))
}
