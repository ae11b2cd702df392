// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailgun

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/pkg/types"
)

type received struct {
	path, user, pass        string
	from, to, subject, text string
	html, contentType       string
}

type fakeMailgun struct {
	mu     sync.Mutex
	got    []received
	failTo string
}

func (f *fakeMailgun) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, _ := r.BasicAuth()
	_ = r.ParseForm()
	rec := received{
		path:        r.URL.Path,
		user:        user,
		pass:        pass,
		from:        r.PostForm.Get("from"),
		to:          r.PostForm.Get("to"),
		subject:     r.PostForm.Get("subject"),
		text:        r.PostForm.Get("text"),
		html:        r.PostForm.Get("html"),
		contentType: r.Header.Get("Content-Type"),
	}
	f.mu.Lock()
	f.got = append(f.got, rec)
	f.mu.Unlock()

	if rec.to == f.failTo {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Forbidden\n"))
		return
	}
	w.Write([]byte(`{"message":"Queued. Thank you."}`))
}

func testSender(t *testing.T, fake *fakeMailgun, to ...string) *Sender {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)
	cfg := types.MailgunConfig{
		Root:   ts.URL + "/v3/mg.example.com/",
		APIKey: "key-abc",
		From:   "bot@example.com",
		To:     to,
	}
	return NewSender(ts.Client(), cfg, zap.NewNop())
}

func TestSendOnePerRecipient(t *testing.T) {
	fake := &fakeMailgun{}
	s := testSender(t, fake, "a@example.com", "b@example.com")

	msg := Message{Subject: "Digest", Text: "<p>x</p>", HTML: "<p>x</p>"}
	n, err := s.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, fake.got, 2)
	for i, want := range []string{"a@example.com", "b@example.com"} {
		r := fake.got[i]
		assert.Equal(t, "/v3/mg.example.com/messages", r.path)
		assert.Equal(t, "api", r.user)
		assert.Equal(t, "key-abc", r.pass)
		assert.Equal(t, "bot@example.com", r.from)
		assert.Equal(t, want, r.to)
		assert.Equal(t, "Digest", r.subject)
		assert.Equal(t, "<p>x</p>", r.text)
		assert.Equal(t, "<p>x</p>", r.html)
		assert.Equal(t, "application/x-www-form-urlencoded", r.contentType)
	}
}

func TestSendStopsAtFirstFailure(t *testing.T) {
	fake := &fakeMailgun{failTo: "b@example.com"}
	s := testSender(t, fake, "a@example.com", "b@example.com", "c@example.com")

	n, err := s.Send(context.Background(), Message{Subject: "s"})
	require.Error(t, err)
	assert.Equal(t, 1, n)

	var se *SendError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "b@example.com", se.Recipient)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "Forbidden", se.Body)
	assert.Len(t, fake.got, 2, "c@example.com must not be attempted")
}

func TestSendTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	root := ts.URL
	ts.Close()

	s := NewSender(http.DefaultClient, types.MailgunConfig{Root: root, To: []string{"a@example.com"}}, zap.NewNop())
	n, err := s.Send(context.Background(), Message{})
	require.Error(t, err)
	assert.Zero(t, n)

	var se *SendError
	require.True(t, errors.As(err, &se))
	assert.NotNil(t, se.Err)
	assert.Zero(t, se.StatusCode)
}
