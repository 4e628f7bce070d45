package enumerator_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/raysh454/rgaalint/internal/enumerator"
	"github.com/raysh454/rgaalint/internal/testutil"
	"github.com/raysh454/rgaalint/internal/webclient"
)

func page(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "text/html")
		_, _ = io.WriteString(w, body)
	}
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	// Depth 0
	mux.HandleFunc("/{$}", page(`
	<a href=/example>example</a>
	<a href=/blog>blog</a>
	<a href=mailto:me@example.com>mail</a>
	<a href=/logo.png>logo</a>
	<a href=https://elsewhere.example.org/>elsewhere</a>
	`))
	// Depth 1
	mux.HandleFunc("/example", page(`
	<a href=/example/a>example a</a>
	<a href=/example/b>example b</a>
	<a href=/example#top>example</a>
	`))
	mux.HandleFunc("/blog", page("blog"))
	// Depth 2
	mux.HandleFunc("/example/a", page(`
	<a href=/example/a/1>example a 1</a>
	<a href=/blog>blog</a>
	`))
	mux.HandleFunc("/example/b", page(`<a href=../example>test</a>`))
	// Depth 3
	mux.HandleFunc("/example/a/1", page("example/a/1"))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSpider_Depths(t *testing.T) {
	srv := newSite(t)
	addr := srv.URL

	wc, err := webclient.NewNetHTTPClient(webclient.Config{Client: webclient.ClientNetHTTP}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create webclient: %v", err)
	}

	tests := []struct {
		depth int
		want  []string
	}{
		{0, []string{addr, addr + "/example", addr + "/blog"}},
		{1, []string{addr, addr + "/example", addr + "/blog", addr + "/example/a", addr + "/example/b"}},
		{2, []string{addr, addr + "/example", addr + "/blog", addr + "/example/a", addr + "/example/b", addr + "/example/a/1"}},
	}
	for _, tt := range tests {
		spider := enumerator.NewSpider(tt.depth, wc, nil)
		got, err := spider.Enumerate(context.Background(), addr, nil)
		if err != nil {
			t.Fatalf("depth %d: %v", tt.depth, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("depth %d: got %v, want %v", tt.depth, got, tt.want)
		}
	}
}

func TestSpider_ReportsProgress(t *testing.T) {
	wc := &testutil.DummyWebClient{Pages: map[string]string{
		"https://site.test":   `<a href="/a">a</a>`,
		"https://site.test/a": `no links`,
	}}
	var calls [][2]int
	got, err := enumerator.NewSpider(5, wc, nil).Enumerate(context.Background(), "https://site.test", func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	want := [][2]int{{1, 2}, {2, 2}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("progress = %v, want %v", calls, want)
	}
}

func TestSpider_SkipsFailingPages(t *testing.T) {
	logger := &testutil.DummyLogger{}
	wc := &testutil.DummyWebClient{
		Pages: map[string]string{
			"https://site.test": `<a href="/broken">x</a><a href="/missing">y</a><a href="/ok">z</a>`,
			"https://site.test/ok": `<a href="/deeper">d</a>`,
		},
		FailURLs: map[string]bool{"https://site.test/broken": true},
	}
	got, err := enumerator.NewSpider(1, wc, logger).Enumerate(context.Background(), "https://site.test", nil)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := []string{
		"https://site.test",
		"https://site.test/broken",
		"https://site.test/missing",
		"https://site.test/ok",
		"https://site.test/deeper",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, _, warns, _ := logger.Count(); warns != 2 {
		t.Errorf("expected 2 warnings, got %d", warns)
	}
}

func TestSpider_HonoursBaseHref(t *testing.T) {
	wc := &testutil.DummyWebClient{Pages: map[string]string{
		"https://site.test/docs/index": `<head><base href="/v2/"></head><a href="intro">intro</a>`,
	}}
	got, err := enumerator.NewSpider(0, wc, nil).Enumerate(context.Background(), "https://site.test/docs/index", nil)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := []string{"https://site.test/docs/index", "https://site.test/v2/intro"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSpider_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wc := &testutil.DummyWebClient{}
	_, err := enumerator.NewSpider(1, wc, nil).Enumerate(ctx, "https://site.test", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
