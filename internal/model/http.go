package model

import (
	"net/http"
	"time"
)

// Request is what a webclient backend is asked to fetch.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is a fetched page. Body holds the raw (or browser rendered) HTML.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
