package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"sync"
)

var controlPanel = template.Must(template.New("control").Parse(controlPanelHTML))

// DemoServer serves fixture pages whose version can be switched at runtime,
// so consecutive audits of the same site show fixed and introduced issues.
type DemoServer struct {
	cfg      Config
	pages    map[string]PageDefinition
	versions map[string]int // path -> current version
	mu       sync.RWMutex
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	if cfg.InitialVersion < 1 {
		cfg.InitialVersion = 1
	}
	pageMap := make(map[string]PageDefinition)
	versions := make(map[string]int)

	for _, p := range GetAllPages() {
		pageMap[p.Path] = p
		versions[p.Path] = clampVersion(p, cfg.InitialVersion)
	}

	return &DemoServer{
		cfg:      cfg,
		pages:    pageMap,
		versions: versions,
	}
}

// Handler returns the demo site and its control endpoints.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for path := range s.pages {
		pattern := "GET " + path
		if path == "/" {
			pattern = "GET /{$}"
		}
		mux.HandleFunc(pattern, s.pageHandler(path))
	}

	// Control panel for version switching
	mux.HandleFunc("GET /demo/control", s.controlPanelHandler)
	mux.HandleFunc("POST /demo/set-version", s.setVersionHandler)
	mux.HandleFunc("GET /demo/get-versions", s.getVersionsHandler)
	mux.HandleFunc("POST /demo/bump-all", s.bumpAllVersionsHandler)
	mux.HandleFunc("POST /demo/reset", s.resetVersionsHandler)

	// Placeholder assets referenced by the pages
	mux.HandleFunc("GET /static/", s.staticHandler)

	return mux
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	fmt.Printf("Demo server starting on http://%s\n", s.cfg.Addr)
	fmt.Printf("Control panel at http://%s/demo/control\n", s.cfg.Addr)
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}

func maxVersion(p PageDefinition) int {
	maxV := 1
	for v := range p.Versions {
		maxV = max(maxV, v)
	}
	return maxV
}

func clampVersion(p PageDefinition, v int) int {
	return min(max(v, 1), maxVersion(p))
}

// pageHandler returns a handler for a specific page path.
func (s *DemoServer) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		pageDef, ok := s.pages[path]
		version := s.versions[path]
		s.mu.RUnlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		// Fall back to the closest lower version.
		pageVersion, ok := pageDef.Versions[version]
		for v := version - 1; !ok && v >= 1; v-- {
			pageVersion, ok = pageDef.Versions[v]
		}

		contentType := pageVersion.ContentType
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Demo-Version", strconv.Itoa(version))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(pageVersion.HTML))
	}
}

// staticHandler serves placeholder assets.
func (s *DemoServer) staticHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("demo asset " + r.URL.Path + "\n"))
}

type pageInfo struct {
	Path              string `json:"path"`
	Description       string `json:"description"`
	CurrentVersion    int    `json:"current_version"`
	AvailableVersions []int  `json:"available_versions"`
}

// snapshot lists pages sorted by path. The caller holds s.mu.
func (s *DemoServer) snapshot() []pageInfo {
	pages := make([]pageInfo, 0, len(s.pages))
	for path, pageDef := range s.pages {
		var versions []int
		for v := range pageDef.Versions {
			versions = append(versions, v)
		}
		slices.Sort(versions)
		pages = append(pages, pageInfo{
			Path:              path,
			Description:       pageDef.Description,
			CurrentVersion:    s.versions[path],
			AvailableVersions: versions,
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return pages
}

// controlPanelHandler serves the control panel for version management.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	pages := s.snapshot()
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = controlPanel.Execute(w, pages)
}

// setVersionHandler sets the version for a specific page.
func (s *DemoServer) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil {
		http.Error(w, "Invalid version number", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	pageDef, ok := s.pages[path]
	if ok {
		version = clampVersion(pageDef, version)
		s.versions[path] = version
	}
	s.mu.Unlock()

	if !ok {
		http.Error(w, "Unknown page", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"success": true,
		"path":    path,
		"version": version,
	})
}

// getVersionsHandler returns the current versions of all pages.
func (s *DemoServer) getVersionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	pages := s.snapshot()
	s.mu.RUnlock()
	writeJSON(w, pages)
}

// bumpAllVersionsHandler moves every page to its next version.
func (s *DemoServer) bumpAllVersionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	for path, pageDef := range s.pages {
		s.versions[path] = clampVersion(pageDef, s.versions[path]+1)
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"success": true,
		"message": "All versions bumped",
	})
}

// resetVersionsHandler resets all pages to version 1.
func (s *DemoServer) resetVersionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	for path := range s.versions {
		s.versions[path] = 1
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"success": true,
		"message": "All versions reset to 1",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

const controlPanelHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Demo Server Control Panel</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; color: #222; }
        .page-card { border: 1px solid #ccc; border-radius: 8px; padding: 16px; margin: 12px 0; }
        .current { font-weight: bold; color: #1b5e20; }
        button { padding: 6px 14px; margin-right: 6px; }
    </style>
</head>
<body>
    <h1>Demo Server Control Panel</h1>
    <p>Version 1 of each page breaks the criteria listed below it, version 2 fixes them.
       Audit the site, switch versions, audit again and compare the two runs with
       <code>rgaalint history diff</code>.</p>

    <form method="post" action="/demo/bump-all"><button type="submit">Bump all versions</button></form>
    <form method="post" action="/demo/reset"><button type="submit">Reset all to v1</button></form>

    <h2>Pages</h2>
    {{range .}}
    <div class="page-card">
        <h3><a href="{{.Path}}">{{.Path}}</a></h3>
        <p>{{.Description}}</p>
        <p class="current">Current: v{{.CurrentVersion}}</p>
        {{$path := .Path}}
        {{range .AvailableVersions}}
        <form method="post" action="/demo/set-version" style="display:inline">
            <input type="hidden" name="path" value="{{$path}}">
            <input type="hidden" name="version" value="{{.}}">
            <button type="submit">v{{.}}</button>
        </form>
        {{end}}
    </div>
    {{end}}
</body>
</html>`
