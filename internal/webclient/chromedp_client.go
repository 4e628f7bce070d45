package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/rgaalint/internal/logging"
)

// serializeDocument serializes every top-level node so the doctype and its
// position survive, which documentElement.outerHTML alone would drop.
const serializeDocument = `(() => {
  const s = new XMLSerializer();
  return Array.from(document.childNodes).map(n => {
    switch (n.nodeType) {
      case Node.DOCUMENT_TYPE_NODE: return s.serializeToString(n);
      case Node.COMMENT_NODE: return "<!--" + n.data + "-->";
      case Node.ELEMENT_NODE: return n.outerHTML;
      default: return "";
    }
  }).join("");
})()`

// ChromedpClient renders pages in a headless Chrome and returns the DOM as
// serialized after the network went idle. One browser is shared; every
// request gets its own tab.
type ChromedpClient struct {
	cfg           Config
	logger        logging.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.Headful {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// start the browser now so a missing binary fails construction
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	l := logging.OrNop(logger).With(logging.Field{Key: "backend", Value: "chromedp"})
	l.Debug("created chromedp webclient", logging.Field{Key: "idle_after", Value: cfg.idleAfter().String()})

	return &ChromedpClient{
		cfg:           cfg,
		logger:        l,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// waitNetworkIdle returns a channel closed once no request has been in
// flight for idleAfter, counted from the load event or the last finished
// request.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idle := make(chan struct{})
	var (
		active  int32
		timerMu sync.Mutex
		timer   *time.Timer
		once    sync.Once
	)

	arm := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&active) <= 0 {
				once.Do(func() { close(idle) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&active, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&active, -1) <= 0 {
				arm()
			}
		case *page.EventLoadEventFired:
			arm()
		}
	})

	return idle
}

// render opens url in a new tab, waits for network idle and runs actions.
func (c *ChromedpClient) render(ctx context.Context, url string, actions ...chromedp.Action) (*network.Response, error) {
	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.cfg.timeout())
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	idle := waitNetworkIdle(tabCtx, c.cfg.idleAfter())

	resp, err := chromedp.RunResponse(tabCtx, network.Enable(), chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("wait for network idle: %w", tabCtx.Err())
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, err
	}
	return resp, nil
}

// Do renders a GET request. Other methods fail with ErrMethodUnsupported.
func (c *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("%w: %s not supported by chromedp backend", ErrMethodUnsupported, m)
	}

	c.logger.Debug("rendering page", logging.Field{Key: "url", Value: req.URL})

	var html string
	resp, err := c.render(ctx, req.URL, chromedp.Evaluate(serializeDocument, &html))
	if err != nil {
		c.logger.Warn("render failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err})
		return nil, err
	}

	out := &Response{
		Request:    req,
		Body:       []byte(html),
		Headers:    http.Header{},
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}
	if resp != nil {
		out.StatusCode = int(resp.Status)
		for k, v := range resp.Headers {
			out.Headers.Set(k, fmt.Sprint(v))
		}
	}
	return out, nil
}

func (c *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Evaluate renders url and evaluates script in the page, decoding its
// JSON-serializable result into res.
func (c *ChromedpClient) Evaluate(ctx context.Context, url, script string, res any) error {
	_, err := c.render(ctx, url, chromedp.Evaluate(script, res))
	return err
}

func (c *ChromedpClient) Close() error {
	c.browserCancel()
	c.allocCancel()
	c.logger.Debug("closed chromedp webclient")
	return nil
}
