package fetcher_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/rgaalint/internal/fetcher"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/testutil"
	"github.com/raysh454/rgaalint/internal/webclient"
)

// recordingCommitter keeps a copy of every committed batch.
type recordingCommitter struct {
	mu      sync.Mutex
	Batches [][]model.PageResult
	err     error
}

func (c *recordingCommitter) CommitPages(_ context.Context, pages []model.PageResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Batches = append(c.Batches, append([]model.PageResult(nil), pages...))
	return c.err
}

func (c *recordingCommitter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.Batches {
		n += len(b)
	}
	return n
}

// bodyAudit records the body as a single violation so tests can check it.
func bodyAudit(_ context.Context, resp *webclient.Response) (*model.PageResult, error) {
	m := model.NewRuleResultMap()
	m.Set("RGAA - 8.3", []model.Violation{{Element: string(resp.Body), Rule: "RGAA - 8.3"}})
	return &model.PageResult{URL: resp.Request.URL, Result: m}, nil
}

func site(urls ...string) *testutil.DummyWebClient {
	pages := map[string]string{}
	for _, u := range urls {
		pages[u] = "body:" + u
	}
	return &testutil.DummyWebClient{Pages: pages}
}

func TestFetcher_Batching(t *testing.T) {
	urls := []string{"1", "2", "3", "4", "5"}
	commit := &recordingCommitter{}

	f, err := fetcher.New(fetcher.Config{MaxConcurrency: 5, CommitSize: 2}, site(urls...), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Audit(context.Background(), urls, bodyAudit, commit, nil); err != nil {
		t.Fatal(err)
	}

	expected := []int{2, 2, 1}
	if len(commit.Batches) != len(expected) {
		t.Fatalf("expected %d batches, got %d", len(expected), len(commit.Batches))
	}
	for i, size := range expected {
		if got := len(commit.Batches[i]); got != size {
			t.Fatalf("batch %d expected %d pages, got %d", i, size, got)
		}
	}
}

func TestFetcher_ResultsKeepInputOrder(t *testing.T) {
	urls := []string{"a", "b", "c", "d", "e", "f"}
	wc := site(urls...)
	wc.ResponseDelay = 5 * time.Millisecond

	f, err := fetcher.New(fetcher.Config{MaxConcurrency: 3}, wc, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Audit(context.Background(), urls, bodyAudit, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(got))
	}
	for i, r := range got {
		if r.URL != urls[i] {
			t.Errorf("result %d: got %s, want %s", i, r.URL, urls[i])
		}
		vs, _ := r.Result.Get("RGAA - 8.3")
		if len(vs) != 1 || vs[0].Element != "body:"+urls[i] {
			t.Errorf("result %d: unexpected violations %v", i, vs)
		}
	}
}

func TestFetcher_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	urls := []string{"one", "two", "three", "four"}
	wc := site(urls...)
	wc.ResponseDelay = 50 * time.Millisecond
	commit := &recordingCommitter{}

	f, err := fetcher.New(fetcher.Config{MaxConcurrency: 10, CommitSize: 3}, wc, nil)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = f.Audit(ctx, urls, bodyAudit, commit, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(commit.Batches) > 1 {
		t.Fatalf("expected at most 1 batch due to cancellation, got %d", len(commit.Batches))
	}
}

func TestFetcher_SkipsFailuresAndLogs(t *testing.T) {
	wc := site("a", "b")
	wc.FailURLs = map[string]bool{"bad": true}
	logger := &testutil.DummyLogger{}

	f, err := fetcher.New(fetcher.Config{MaxConcurrency: 5, CommitSize: 2}, wc, logger)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Audit(context.Background(), []string{"a", "bad", "missing", "b"}, bodyAudit, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].URL != "a" || got[1].URL != "b" {
		t.Fatalf("unexpected results: %v", got)
	}
	if _, _, warns, _ := logger.Count(); warns != 2 {
		t.Fatalf("expected 2 warnings, got %d", warns)
	}
}

func TestFetcher_AuditErrorSkipsPage(t *testing.T) {
	f, err := fetcher.New(fetcher.Config{}, site("a", "b"), nil)
	if err != nil {
		t.Fatal(err)
	}
	audit := func(ctx context.Context, resp *webclient.Response) (*model.PageResult, error) {
		if resp.Request.URL == "b" {
			return nil, errors.New("boom")
		}
		return bodyAudit(ctx, resp)
	}
	got, err := f.Audit(context.Background(), []string{"a", "b"}, audit, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].URL != "a" {
		t.Fatalf("unexpected results: %v", got)
	}
}

func TestFetcher_CommitErrorIsLogged(t *testing.T) {
	logger := &testutil.DummyLogger{}
	commit := &recordingCommitter{err: errors.New("disk full")}
	f, err := fetcher.New(fetcher.Config{CommitSize: 1}, site("a"), logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Audit(context.Background(), []string{"a"}, bodyAudit, commit, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, _, errs := logger.Count(); errs != 1 {
		t.Fatalf("expected 1 error log, got %d", errs)
	}
}

func TestFetcher_Progress(t *testing.T) {
	urls := []string{"a", "b", "c"}
	f, err := fetcher.New(fetcher.Config{MaxConcurrency: 2}, site(urls...), nil)
	if err != nil {
		t.Fatal(err)
	}
	var mu sync.Mutex
	var last, calls int
	_, err = f.Audit(context.Background(), urls, bodyAudit, nil, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if done > last {
			last = done
		}
		if total != len(urls) {
			t.Errorf("total = %d", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 || last != 3 {
		t.Errorf("calls = %d, last = %d", calls, last)
	}
}

func TestFetcher_ConcurrentAuditSafety(t *testing.T) {
	var urls []string
	for i := 0; i < 3; i++ {
		urls = append(urls, fmt.Sprintf("u%d-1", i), fmt.Sprintf("u%d-2", i))
	}
	commit := &recordingCommitter{}
	f, err := fetcher.New(fetcher.Config{MaxConcurrency: 20, CommitSize: 5}, site(urls...), nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = f.Audit(context.Background(), urls[i*2:i*2+2], bodyAudit, commit, nil)
		}(i)
	}
	wg.Wait()

	if total := commit.total(); total != 6 {
		t.Errorf("expected 6 pages total, got %d", total)
	}
}

func TestNew_NilWebClient(t *testing.T) {
	if _, err := fetcher.New(fetcher.Config{}, nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
