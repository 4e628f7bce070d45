package enumerator

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/utils"
	"github.com/raysh454/rgaalint/internal/webclient"
)

// Extensions never worth auditing as a page.
var assetExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true, ".ico": true,
	".css": true, ".js": true, ".json": true, ".xml": true, ".pdf": true, ".zip": true,
	".mp3": true, ".mp4": true, ".webm": true, ".woff": true, ".woff2": true, ".ttf": true,
}

// Spider crawls same-host links breadth first. Pages at depth MaxDepth are
// still fetched, so links one level deeper are reported but not followed.
type Spider struct {
	MaxDepth int
	wc       webclient.WebClient
	logger   logging.Logger
}

type crawl struct {
	spider  *Spider
	root    *utils.PageURL
	depth   map[string]int
	fetch   map[string]string // normalized key -> address as linked
	results []string
}

func NewSpider(maxDepth int, wc webclient.WebClient, logger logging.Logger) *Spider {
	logger = logging.OrNop(logger)
	return &Spider{
		MaxDepth: maxDepth,
		wc:       wc,
		logger:   logger.With(logging.Field{Key: "component", Value: "spider"}),
	}
}

// Enumerate returns target followed by every discovered page in discovery
// order. Pages are deduplicated on their normalized form but returned as
// first linked. Fetch failures of individual pages are logged and skipped; only
// cancellation and an unparsable target are errors.
func (s *Spider) Enumerate(ctx context.Context, target string, cb utils.ProgressCallback) ([]string, error) {
	if s.wc == nil {
		return nil, fmt.Errorf("spider: webclient is nil")
	}
	root, err := utils.ParsePageURL(target)
	if err != nil {
		return nil, err
	}
	key := root.String()
	c := &crawl{
		spider:  s,
		root:    root,
		depth:   map[string]int{key: 0},
		fetch:   map[string]string{key: strings.TrimSpace(target)},
		results: []string{key},
	}
	if err := c.run(ctx, cb); err != nil {
		return nil, err
	}
	out := make([]string, len(c.results))
	for i, key := range c.results {
		out[i] = c.fetch[key]
	}
	return out, nil
}

func (c *crawl) run(ctx context.Context, cb utils.ProgressCallback) error {
	for i := 0; i < len(c.results); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := c.results[i]
		d := c.depth[page]
		if d > c.spider.MaxDepth {
			break
		}

		links, err := c.links(ctx, c.fetch[page])
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.spider.logger.Warn("error while crawling page",
				logging.Field{Key: "url", Value: page},
				logging.Field{Key: "error", Value: err.Error()})
		}
		c.add(links, d)
		if cb != nil {
			cb(i+1, len(c.results))
		}
	}
	return nil
}

func (c *crawl) links(ctx context.Context, page string) ([]*url.URL, error) {
	resp, err := c.spider.wc.Get(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("error making http request: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("received %d from %s", resp.StatusCode, page)
	}
	if ct := resp.Headers.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "text/html") {
		return nil, nil
	}

	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %w", page, err)
	}
	u, err := url.Parse(page)
	if err != nil {
		return nil, err
	}
	base := &utils.PageURL{URL: u}
	if b := baseHref(doc); b != "" {
		if resolved, ok := base.Resolve(b); ok {
			base = &utils.PageURL{URL: resolved}
		}
	}

	var out []*url.URL
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "a" || n.Data == "area") {
			if href, ok := attr(n, "href"); ok {
				if u, ok := base.Resolve(href); ok {
					out = append(out, u)
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return out, nil
}

func (c *crawl) add(links []*url.URL, parentDepth int) {
	for _, link := range links {
		u, err := utils.ParsePageURL(link.String())
		if err != nil || !c.root.SameHost(u) || assetExt[strings.ToLower(path.Ext(u.URL.Path))] {
			continue
		}
		key := u.String()
		if _, seen := c.depth[key]; seen {
			continue
		}
		c.depth[key] = parentDepth + 1
		c.fetch[key] = link.String()
		c.results = append(c.results, key)
	}
}

func baseHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "base" {
		v, _ := attr(n, "href")
		return v
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if v := baseHref(ch); v != "" {
			return v
		}
	}
	return ""
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
