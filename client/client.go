/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package client implements the REST client for the ticket search backend.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ciscokidok/servicenow-agent/client/types"
	json "github.com/goccy/go-json"
)

const (
	searchURL = `/search_snow`
	healthURL = `/health`

	// DefaultMaxResults is the record ceiling sent when the caller does not
	// specify one.
	DefaultMaxResults = 100

	// DefaultBaseURL is where the backend listens in a stock development
	// setup.
	DefaultBaseURL = `http://localhost:8000`
)

// ErrEmptyBody indicates the backend returned a 2xx with nothing to decode.
var ErrEmptyBody = errors.New("empty response body")

// Client talks to a single search backend instance.
// All methods are safe for concurrent use.
type Client struct {
	baseURL string // scheme://host[:port], no trailing slash
	hc      *http.Client
}

// New returns a Client bound to the given backend base URL
// (e.g. "http://localhost:8000").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
	}
}

// NewWithHTTPClient is New with a caller-supplied http.Client, primarily for
// injecting transports in tests.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	if hc != nil {
		c.hc = hc
	}
	return c
}

// Search submits a free-text query and returns the parsed result set.
//
// Error semantics mirror the backend contract: a transport-level failure is
// returned as-is, while a delivered response that is unparseable, non-2xx, or
// carries success=false is surfaced using the structured error field when the
// body has one.
func (c *Client) Search(ctx context.Context, query string, opts *types.SearchOptions) (types.SearchResponse, error) {
	if opts == nil {
		opts = &types.SearchOptions{}
	}
	max := opts.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}

	vals := url.Values{}
	vals.Set("search_query", query)
	vals.Set("max_results", strconv.Itoa(max))

	var sr types.SearchResponse
	body, status, err := c.get(ctx, searchURL, vals)
	if err != nil {
		// transport failure, no response to mine for a better message
		return sr, err
	}
	if len(body) == 0 {
		return sr, ErrEmptyBody
	}
	if err := json.Unmarshal(body, &sr); err != nil {
		return sr, fmt.Errorf("malformed response (%s): %s", status, firstLine(body))
	}
	if !sr.Success {
		if sr.Error != "" {
			return sr, errors.New(sr.Error)
		}
		return sr, fmt.Errorf("search failed: %s", status)
	}
	return sr, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var hr types.HealthResponse
	body, status, err := c.get(ctx, healthURL, nil)
	if err != nil {
		return hr, err
	}
	if err := json.Unmarshal(body, &hr); err != nil {
		return hr, fmt.Errorf("malformed health response (%s)", status)
	}
	return hr, nil
}

// get performs a GET against the backend, returning the raw body and status
// line. A non-nil error means the transport failed and no response exists.
func (c *Client) get(ctx context.Context, path string, vals url.Values) (body []byte, status string, err error) {
	u := c.baseURL + path
	if len(vals) > 0 {
		u += "?" + vals.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.Status, err
	}
	return body, resp.Status, nil
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const maxLen = 200
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
