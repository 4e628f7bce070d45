// Package webclient fetches pages for auditing. Backends are selected by
// name through a small registry (see factory.go).
package webclient

import (
	"context"
)

// WebClient fetches a page and returns its HTML.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Get(ctx context.Context, url string) (*Response, error)
	Close() error
}
