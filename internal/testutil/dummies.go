// Package testutil provides shared test doubles for use across package tests.
// The dummies satisfy the production interfaces so they can be injected
// into components under test without network or disk access.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/utils"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// Count returns how many messages were logged at each level, in the order
// debug, info, warn, error.
func (l *DummyLogger) Count() (debug, info, warn, errs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Debugs), len(l.Infos), len(l.Warns), len(l.Errors)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient serves canned HTML per URL with status 200.
// Unknown URLs get a 404 with an empty body; FailURLs force an error.
type DummyWebClient struct {
	Pages         map[string]string
	FailURLs      map[string]bool
	ResponseDelay time.Duration

	mu       sync.Mutex
	Requests []*model.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	headers := http.Header{}
	headers.Set("Content-Type", "text/html; charset=utf-8")
	body, ok := d.Pages[req.URL]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return &model.Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*model.Response, error) {
	return d.Do(ctx, &model.Request{Method: http.MethodGet, URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// Requested returns the URLs requested so far, in call order.
func (d *DummyWebClient) Requested() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Requests))
	for i, r := range d.Requests {
		out[i] = r.URL
	}
	return out
}

// ─── Enumerator ────────────────────────────────────────────────────────

// DummyEnumerator returns a fixed URL list.
type DummyEnumerator struct {
	URLs []string
	Err  error
}

func (d *DummyEnumerator) Enumerate(_ context.Context, _ string, cb utils.ProgressCallback) ([]string, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	if cb != nil {
		cb(len(d.URLs), len(d.URLs))
	}
	return d.URLs, nil
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
