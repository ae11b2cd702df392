// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"net/http"

	"github.com/pdiddy/arxiv-notify/pkg/types"
)

// NewClient returns an HTTP client configured from cfg. A zero Timeout
// leaves requests unbounded. When UserAgent is set, every request that
// does not already carry a User-Agent gets it.
func NewClient(cfg types.HTTPConfig) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.UserAgent != "" {
		transport = &userAgentTransport{base: transport, userAgent: cfg.UserAgent}
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
