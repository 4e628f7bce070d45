package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/raysh454/rgaalint/internal/assessor"
	"github.com/raysh454/rgaalint/internal/collector"
	"github.com/raysh454/rgaalint/internal/enumerator"
	"github.com/raysh454/rgaalint/internal/fetcher"
	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/registry"
	"github.com/raysh454/rgaalint/internal/report"
	"github.com/raysh454/rgaalint/internal/utils"
	"github.com/raysh454/rgaalint/internal/webclient"
)

var (
	ErrEmptyTarget     = errors.New("empty audit target")
	ErrHistoryDisabled = errors.New("audit history is disabled")
)

// Audit is the outcome of one audit request: a single page or a crawled
// site. RunID is set when the audit was stored in the history.
type Audit struct {
	RunID  string             `json:"run_id,omitempty"`
	Target string             `json:"target"`
	Mode   model.Mode         `json:"mode"`
	Pages  []model.PageResult `json:"pages"`
}

// ProgressFunc receives crawl ("enumerate") and audit ("audit") progress.
type ProgressFunc func(stage string, done, total int)

// Orchestrator wires the collector, assessor, crawler and history together.
// It is safe for concurrent use.
type Orchestrator struct {
	cfg      *Config
	assessor *assessor.Assessor
	registry *registry.Registry
	reports  *report.Generator
	logger   logging.Logger

	compMu  sync.Mutex
	wc      webclient.WebClient
	browser *webclient.ChromedpClient
	// ownsBrowser is false when browser is also wc.
	ownsBrowser bool

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc

	// enumerate is replaceable in tests.
	enumerate func(wc webclient.WebClient) enumerator.Enumerator
}

// NewOrchestrator ties together config, history and logger. reg may be nil.
func NewOrchestrator(cfg *Config, reg *registry.Registry, logger logging.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger = logging.OrNop(logger)

	a, err := assessor.New(&assessor.Config{BannedWords: cfg.AssessorCfg.BannedWords}, logger)
	if err != nil {
		return nil, fmt.Errorf("new assessor: %w", err)
	}

	o := &Orchestrator{
		cfg:      cfg,
		assessor: a,
		registry: reg,
		reports:  report.NewGenerator(a.Dictionary(), logger),
		logger:   logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
	}
	o.enumerate = func(wc webclient.WebClient) enumerator.Enumerator {
		return enumerator.NewSpider(cfg.EnumeratorCfg.MaxDepth, wc, logger)
	}
	return o, nil
}

func (o *Orchestrator) Config() *Config { return o.cfg }

// Reports returns the generator used for compliance and rendering.
func (o *Orchestrator) Reports() *report.Generator { return o.reports }

// UseWebClient replaces the page fetcher. Intended for tests and embedding.
func (o *Orchestrator) UseWebClient(wc webclient.WebClient) {
	o.compMu.Lock()
	defer o.compMu.Unlock()
	o.wc = wc
}

func (o *Orchestrator) webClient() (webclient.WebClient, error) {
	o.compMu.Lock()
	defer o.compMu.Unlock()
	if o.wc != nil {
		return o.wc, nil
	}
	wc, err := webclient.NewWebClient(o.cfg.WebClientCfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}
	o.wc = wc
	return wc, nil
}

// evaluator returns the headless browser used for virtual captures,
// sharing the page fetcher when it already is one.
func (o *Orchestrator) evaluator() (collector.Evaluator, error) {
	o.compMu.Lock()
	defer o.compMu.Unlock()
	if o.browser != nil {
		return o.browser, nil
	}
	if b, ok := o.wc.(*webclient.ChromedpClient); ok {
		o.browser = b
		return b, nil
	}
	cfg := o.cfg.WebClientCfg
	cfg.Client = webclient.ClientChromedp
	b, err := webclient.NewChromedpClient(cfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	o.browser = b
	o.ownsBrowser = true
	return b, nil
}

// target canonicalizes a user supplied address.
func (o *Orchestrator) target(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyTarget
	}
	return utils.Canonicalize(raw, o.cfg.URLCfg)
}

func (o *Orchestrator) runInput(ctx context.Context, pageURL string, in *assessor.Input) (*model.PageResult, error) {
	result, err := o.assessor.Run(ctx, *in)
	if err != nil {
		return nil, err
	}
	return &model.PageResult{URL: pageURL, Result: result}, nil
}

func (o *Orchestrator) auditDOM(ctx context.Context, pageURL string, body []byte) (*model.PageResult, error) {
	in, err := collector.FromHTML(body, pageURL)
	if err != nil {
		return nil, err
	}
	return o.runInput(ctx, pageURL, in)
}

func (o *Orchestrator) auditCapture(ctx context.Context, page *collector.VirtualPage) (*model.PageResult, error) {
	return o.runInput(ctx, page.URL, page.Input(nil))
}

// auditPage fetches and audits one page in the configured mode.
func (o *Orchestrator) auditPage(ctx context.Context, pageURL string) (*model.PageResult, error) {
	if o.cfg.AssessorCfg.Mode == model.ModeVirtual {
		ev, err := o.evaluator()
		if err != nil {
			return nil, err
		}
		page, err := collector.Capture(ctx, ev, pageURL)
		if err != nil {
			return nil, err
		}
		return o.auditCapture(ctx, page)
	}

	wc, err := o.webClient()
	if err != nil {
		return nil, err
	}
	resp, err := wc.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return o.auditDOM(ctx, pageURL, resp.Body)
}

// AuditHTML audits markup supplied by the caller, in DOM mode.
func (o *Orchestrator) AuditHTML(ctx context.Context, pageURL string, body []byte) (*Audit, error) {
	page, err := o.auditDOM(ctx, pageURL, body)
	if err != nil {
		return nil, err
	}
	return o.store(ctx, pageURL, model.ModeDOM, []model.PageResult{*page})
}

// AuditVirtual audits a page captured elsewhere, in virtual mode.
func (o *Orchestrator) AuditVirtual(ctx context.Context, page *collector.VirtualPage) (*Audit, error) {
	if page == nil {
		return nil, ErrEmptyTarget
	}
	result, err := o.auditCapture(ctx, page)
	if err != nil {
		return nil, err
	}
	return o.store(ctx, page.URL, model.ModeVirtual, []model.PageResult{*result})
}

// AuditURL fetches and audits a single page.
func (o *Orchestrator) AuditURL(ctx context.Context, rawURL string) (*Audit, error) {
	target, err := o.target(rawURL)
	if err != nil {
		return nil, err
	}
	page, err := o.auditPage(ctx, target)
	if err != nil {
		return nil, err
	}
	return o.store(ctx, target, o.cfg.AssessorCfg.Mode, []model.PageResult{*page})
}

// AuditURLs audits urls in parallel, at most MaxConcurrency at a time.
// Failing pages are logged and left out; results keep the order of urls.
func (o *Orchestrator) AuditURLs(ctx context.Context, urls []string, cb utils.ProgressCallback) ([]model.PageResult, error) {
	results := make([]*model.PageResult, len(urls))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, o.cfg.FetcherCfg.MaxConcurrency))
	for i, u := range urls {
		g.Go(func() error {
			page, err := o.auditPage(gctx, u)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				o.logger.Warn("skipping page",
					logging.Field{Key: "url", Value: u},
					logging.Field{Key: "error", Value: err.Error()})
			} else {
				results[i] = page
			}
			if cb != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				cb(n, len(urls))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
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

// AuditSite crawls rawURL and audits every discovered page. In DOM mode
// pages go through the fetcher worker pool and are streamed into the
// history as they complete; in virtual mode each page is captured by the
// browser.
func (o *Orchestrator) AuditSite(ctx context.Context, rawURL string, progress ProgressFunc) (*Audit, error) {
	target, err := o.target(rawURL)
	if err != nil {
		return nil, err
	}
	stage := func(name string) utils.ProgressCallback {
		if progress == nil {
			return nil
		}
		return func(done, total int) { progress(name, done, total) }
	}

	wc, err := o.webClient()
	if err != nil {
		return nil, err
	}
	urls, err := o.enumerate(wc).Enumerate(ctx, target, stage("enumerate"))
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", target, err)
	}
	o.logger.Info("site enumerated",
		logging.Field{Key: "target", Value: target},
		logging.Field{Key: "pages", Value: len(urls)})

	mode := o.cfg.AssessorCfg.Mode
	audit := &Audit{Target: target, Mode: mode}

	if mode == model.ModeVirtual {
		pages, err := o.AuditURLs(ctx, urls, stage("audit"))
		if err != nil {
			return nil, err
		}
		return o.store(ctx, target, mode, pages)
	}

	var commit fetcher.Committer
	if o.registry != nil {
		run, err := o.registry.CreateRun(ctx, target, mode)
		if err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
		audit.RunID = run.ID
		commit = o.registry.Committer(run.ID)
	}

	f, err := fetcher.New(o.cfg.FetcherCfg, wc, o.logger)
	if err != nil {
		return nil, err
	}
	pages, err := f.Audit(ctx, urls, func(ctx context.Context, resp *webclient.Response) (*model.PageResult, error) {
		return o.auditDOM(ctx, resp.Request.URL, resp.Body)
	}, commit, stage("audit"))
	if err != nil {
		return nil, err
	}
	audit.Pages = pages
	return audit, nil
}

// store records pages as a new run when history is enabled.
func (o *Orchestrator) store(ctx context.Context, target string, mode model.Mode, pages []model.PageResult) (*Audit, error) {
	audit := &Audit{Target: target, Mode: mode, Pages: pages}
	if o.registry == nil {
		return audit, nil
	}
	run, err := o.registry.CreateRun(ctx, target, mode)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	if err := o.registry.AddPageResults(ctx, run.ID, pages); err != nil {
		return nil, fmt.Errorf("store pages: %w", err)
	}
	audit.RunID = run.ID
	return audit, nil
}

// Report writes the audit in the formats selected by opts. An empty
// BaseURL names the files after the audit target.
func (o *Orchestrator) Report(a *Audit, opts report.Options) ([]string, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = a.Target
	}
	return o.reports.GenerateAudit(a.Pages, opts)
}

// ListRuns, GetRun, DiffRuns and DeleteRun expose the audit history.
func (o *Orchestrator) ListRuns(ctx context.Context, target string, limit int) ([]registry.Run, error) {
	if o.registry == nil {
		return nil, ErrHistoryDisabled
	}
	return o.registry.ListRuns(ctx, target, limit)
}

func (o *Orchestrator) GetRun(ctx context.Context, id string) (*registry.RunDetail, error) {
	if o.registry == nil {
		return nil, ErrHistoryDisabled
	}
	return o.registry.GetRun(ctx, id)
}

func (o *Orchestrator) DiffRuns(ctx context.Context, baseID, headID string) (*registry.RunDiff, error) {
	if o.registry == nil {
		return nil, ErrHistoryDisabled
	}
	return o.registry.DiffRuns(ctx, baseID, headID)
}

func (o *Orchestrator) DeleteRun(ctx context.Context, id string) error {
	if o.registry == nil {
		return ErrHistoryDisabled
	}
	return o.registry.DeleteRun(ctx, id)
}

// Close cancels running jobs and releases the page fetcher and browser.
func (o *Orchestrator) Close() error {
	o.jobsMu.Lock()
	for _, cancel := range o.jobCancels {
		cancel()
	}
	o.jobsMu.Unlock()

	o.compMu.Lock()
	defer o.compMu.Unlock()
	var firstErr error
	if o.wc != nil {
		if err := o.wc.Close(); err != nil {
			firstErr = fmt.Errorf("close webclient: %w", err)
		}
	}
	if o.browser != nil && o.ownsBrowser {
		if err := o.browser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close browser: %w", err)
		}
	}
	return firstErr
}
