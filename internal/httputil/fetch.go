// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultMaxBytes caps the size of a fetched body when FetchOptions.MaxBytes
// is zero.
const DefaultMaxBytes = 32 << 20

// ErrTooLarge is returned when a response body exceeds the size cap.
var ErrTooLarge = errors.New("response body too large")

// FetchOptions tunes a single GET request.
type FetchOptions struct {
	// UserAgent is sent as the User-Agent header when non-empty.
	UserAgent string

	// Accept is sent as the Accept header when non-empty.
	Accept string

	// MaxBytes caps the body size. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// Fetch performs one GET of url and returns the response body. Any status
// other than 200 is an error, and so is a body larger than the size cap.
// The request is made once; callers decide what a failure means.
func Fetch(ctx context.Context, client *http.Client, url string, opts FetchOptions) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	if opts.Accept != "" {
		req.Header.Set("Accept", opts.Accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Redacted())
	}

	// Read one byte past the cap so an oversized body is detected.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}
