// Package fetcher downloads and audits many pages concurrently and hands
// the results to a Committer in batches.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/utils"
	"github.com/raysh454/rgaalint/internal/webclient"
)

// AuditFunc audits one fetched page.
type AuditFunc func(ctx context.Context, resp *webclient.Response) (*model.PageResult, error)

// Committer stores audited pages, typically in the audit history.
type Committer interface {
	CommitPages(ctx context.Context, pages []model.PageResult) error
}

type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a Fetcher. Zero config values take the package defaults.
func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	logger = logging.OrNop(logger)
	return &Fetcher{
		cfg:    cfg.withDefaults(),
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Audit fetches every URL with at most MaxConcurrency requests in flight and
// runs audit on each HTML response. Pages that fail to fetch or audit are
// logged and left out. Results come back in the order of urls; commit, when
// non-nil, receives them in completion order, CommitSize at a time.
func (f *Fetcher) Audit(ctx context.Context, urls []string, audit AuditFunc, commit Committer, cb utils.ProgressCallback) ([]model.PageResult, error) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.cfg.MaxConcurrency)
	pageCh := make(chan model.PageResult)
	batcherDone := make(chan struct{})
	results := make([]*model.PageResult, len(urls))
	var done atomic.Int64

	go func() {
		defer close(batcherDone)
		batch := make([]model.PageResult, 0, f.cfg.CommitSize)
		flush := func() {
			if len(batch) == 0 || commit == nil {
				batch = batch[:0]
				return
			}
			// The batch is reused; committers must not keep the slice.
			if err := commit.CommitPages(context.WithoutCancel(ctx), batch); err != nil {
				f.logger.Error("error while committing page batch",
					logging.Field{Key: "pages", Value: len(batch)},
					logging.Field{Key: "error", Value: err})
			}
			batch = batch[:0]
		}
		for page := range pageCh {
			batch = append(batch, page)
			if len(batch) == f.cfg.CommitSize {
				flush()
			}
		}
		flush()
	}()

	for i, pageURL := range urls {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			defer func() {
				if cb != nil {
					cb(int(done.Add(1)), len(urls))
				}
			}()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			page, err := f.auditOne(ctx, pageURL, audit)
			if err != nil {
				f.logger.Warn("skipping page",
					logging.Field{Key: "url", Value: pageURL},
					logging.Field{Key: "error", Value: err.Error()})
				return
			}
			results[i] = page
			pageCh <- *page
		}(i, pageURL)
	}

	wg.Wait()
	close(pageCh)
	<-batcherDone

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.PageResult, 0, len(urls))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *Fetcher) auditOne(ctx context.Context, pageURL string, audit AuditFunc) (*model.PageResult, error) {
	resp, err := f.HTTPGet(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Headers.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("not an html page: %s", ct)
	}
	page, err := audit(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	if page.URL == "" {
		page.URL = pageURL
	}
	return page, nil
}

// HTTPGet fetches one page through the configured webclient.
func (f *Fetcher) HTTPGet(ctx context.Context, page string) (*webclient.Response, error) {
	resp, err := f.wc.Get(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("error GETting %s: %w", page, err)
	}
	return resp, nil
}
