package webclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/webclient"
)

func newChromedp(t *testing.T) *webclient.ChromedpClient {
	t.Helper()
	cfg := webclient.Config{Client: webclient.ClientChromedp, IdleAfter: 200 * time.Millisecond, Timeout: 20 * time.Second}
	client, err := webclient.NewChromedpClient(cfg, logging.NopLogger{})
	if err != nil {
		t.Skipf("Skipping chromedp test (environment does not support chromedp): %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// TestChromedpClient_DoRejectsNonGET verifies that Do() returns error for non-GET methods
func TestChromedpClient_DoRejectsNonGET(t *testing.T) {
	client := newChromedp(t)

	_, err := client.Do(context.Background(), &webclient.Request{Method: "POST", URL: "http://example.com"})
	if !errors.Is(err, webclient.ErrMethodUnsupported) {
		t.Fatalf("Expected ErrMethodUnsupported, got %v", err)
	}
}

func TestChromedpClient_RendersScriptsAndKeepsDoctype(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<!DOCTYPE html><html lang="fr"><body><div id="x"></div>
<script>document.getElementById("x").innerHTML = "<img src='a.png'>";</script></body></html>`))
	}))
	defer ts.Close()

	client := newChromedp(t)
	resp, err := client.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body := string(resp.Body)
	if !strings.HasPrefix(body, "<!DOCTYPE html>") {
		t.Errorf("doctype lost: %.60s", body)
	}
	if !strings.Contains(body, `<img src="a.png">`) {
		t.Errorf("script output missing: %s", body)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
