package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config selects and tunes a backend.
type Config struct {
	Client Client

	// Timeout bounds one fetch. Zero means 30s.
	Timeout time.Duration

	// IdleAfter is how long the network must stay quiet before a rendered
	// page is considered loaded (chromedp only). Zero means 2s.
	IdleAfter time.Duration

	// Headful shows the browser window (chromedp only).
	Headful bool

	UserAgent string
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) idleAfter() time.Duration {
	if c.IdleAfter <= 0 {
		return 2 * time.Second
	}
	return c.IdleAfter
}
