// Package utils holds URL helpers shared by the crawler, the server and the
// report writer.
package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("missing host")
)

// PageURL is a parsed page address with the fragment, default port and
// trailing slash removed.
type PageURL struct {
	URL *url.URL
}

func ParsePageURL(raw string) (*PageURL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = stripDefaultPort(u.Scheme, strings.ToLower(u.Host))
	u.Path = strings.TrimRight(u.Path, "/")
	return &PageURL{URL: u}, nil
}

func (p *PageURL) String() string { return p.URL.String() }

// SameHost reports whether both addresses point at the same host name.
func (p *PageURL) SameHost(other *PageURL) bool {
	return p.URL.Hostname() == other.URL.Hostname()
}

// Resolve resolves ref against p and drops the fragment. Only http(s)
// results are returned; mailto:, javascript: and friends yield ok == false.
// The result is not normalized, so a trailing slash still resolves
// relative references as a directory.
func (p *PageURL) Resolve(ref string) (*url.URL, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return nil, false
	}
	r, err := url.Parse(ref)
	if err != nil {
		return nil, false
	}
	abs := p.URL.ResolveReference(r)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil, false
	}
	abs.Fragment = ""
	abs.RawFragment = ""
	return abs, true
}

func stripDefaultPort(scheme, host string) string {
	if (scheme == "http" && strings.HasSuffix(host, ":80")) ||
		(scheme == "https" && strings.HasSuffix(host, ":443")) {
		host, _, _ = strings.Cut(host, ":")
	}
	return host
}

// CanonicalizeOptions controls optional canonicalization policies.
type CanonicalizeOptions struct {
	DropTrackingParams bool   // utm_*, gclid, fbclid, ...
	StripTrailingSlash bool   // /a and /a/ are the same page (root stays "/")
	DefaultScheme      string // assumed for schemeless input; empty requires a scheme
}

var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"gclid", "fbclid", "mc_cid", "mc_eid",
}

// Canonicalize returns a deterministic form of raw, used as the identity of
// a page in audit history: lower-case punycode host, no credentials, no
// fragment, clean path and sorted query.
func Canonicalize(raw string, opts CanonicalizeOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "canonicalize", URL: raw, Err: ErrEmptyURL}
	}
	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "canonicalize", URL: raw, Err: ErrMissingHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	if port := u.Port(); port != "" {
		host = stripDefaultPort(u.Scheme, net.JoinHostPort(host, port))
	}
	u.Host = host
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""

	p := path.Clean(u.Path)
	if p == "." {
		p = "/"
	}
	if opts.StripTrailingSlash && len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	u.Path = p

	q := u.Query()
	if opts.DropTrackingParams {
		for k := range q {
			if slices.Contains(trackingParams, strings.ToLower(k)) {
				q.Del(k)
			}
		}
	}
	for _, vs := range q {
		slices.Sort(vs)
	}
	// Encode sorts by key.
	u.RawQuery = q.Encode()

	return u.String(), nil
}

var unsafeFileChars = regexp.MustCompile(`[/\\:?*"<>|]+`)

// OutputBaseName derives a report file name from the audited address:
// scheme dropped, path separators and other unsafe characters replaced.
// An empty address gives "audit".
func OutputBaseName(baseURL string) string {
	base := strings.TrimSpace(baseURL)
	lower := strings.ToLower(base)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			base = base[len(scheme):]
			break
		}
	}
	base = strings.Trim(unsafeFileChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		return "audit"
	}
	return base
}
