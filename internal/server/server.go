package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/raysh454/rgaalint/internal/app"
	"github.com/raysh454/rgaalint/internal/collector"
	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/registry"
	"github.com/raysh454/rgaalint/internal/rules"
	"github.com/raysh454/rgaalint/internal/utils"
)

// maxLoggedBody caps how much of a request body ServeHTTP logs.
const maxLoggedBody = 512

// Server is the HTTP + WebSocket API surface for rgaalint.
type Server struct {
	cfg          Config
	app          *app.Application
	ownsApp      bool
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
	origins      []string
}

// NewServer creates a new Server. It builds its own Application when
// cfg.App is nil.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	application := cfg.App
	owns := false
	if application == nil {
		if cfg.AppConfig == nil {
			cfg.AppConfig = app.DefaultConfig()
		}
		a, err := app.NewApplication(cfg.AppConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("creating application: %w", err)
		}
		application = a
		owns = true
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = application.Config.ServerCfg.ListenAddr
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		app:          application,
		ownsApp:      owns,
		orchestrator: application.Orch,
		router:       r,
		logger:       logger,
		origins:      application.Config.ServerCfg.AllowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.allowOrigin(origin) != ""
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/audits", s.optionsHandler("GET"))
	r.Options("/audits/html", s.optionsHandler("POST"))
	r.Options("/audits/url", s.optionsHandler("POST"))
	r.Options("/audits/virtual", s.optionsHandler("POST"))
	r.Options("/audits/{id}", s.optionsHandler("GET, DELETE"))
	r.Options("/audits/{id}/compliance", s.optionsHandler("GET"))
	r.Options("/audits/{id}/report", s.optionsHandler("GET"))
	r.Options("/audits/{base}/diff/{head}", s.optionsHandler("GET"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/site", s.optionsHandler("POST"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/ws/audits/site", s.optionsHandler("GET"))

	// Single page audits
	r.Post("/audits/html", s.handleAuditHTML)
	r.Post("/audits/url", s.handleAuditURL)
	r.Post("/audits/virtual", s.handleAuditVirtual)

	// History
	r.Get("/audits", s.handleListAudits)
	r.Get("/audits/{id}", s.handleGetAudit)
	r.Delete("/audits/{id}", s.handleDeleteAudit)
	r.Get("/audits/{id}/compliance", s.handleGetCompliance)
	r.Get("/audits/{id}/report", s.handleGetReport)
	r.Get("/audits/{base}/diff/{head}", s.handleDiffAudits)

	// Site audits over REST
	r.Post("/jobs/site", s.handleStartSiteJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket for site audit progress
	r.Get("/ws/audits/site", s.handleSiteWS)
}

// allowOrigin returns the value for Access-Control-Allow-Origin, or "" when
// origin is not allowed.
func (s *Server) allowOrigin(origin string) string {
	if len(s.origins) == 0 || slices.Contains(s.origins, "*") {
		return "*"
	}
	if slices.Contains(s.origins, origin) {
		return origin
	}
	return ""
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowed := s.allowOrigin(r.Header.Get("Origin")); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			logged := bodyBytes
			if len(logged) > maxLoggedBody {
				logged = logged[:maxLoggedBody]
			}
			fields = append(fields,
				logging.Field{Key: "body", Value: string(logged)},
				logging.Field{Key: "body_size", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the application when the server created it.
func (s *Server) Close() {
	if !s.ownsApp || s.app == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.app.Shutdown(ctx); err != nil {
		s.logger.Warn("shutting down application", logging.Field{Key: "error", Value: err.Error()})
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps orchestrator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrRunNotFound), errors.Is(err, app.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, app.ErrEmptyTarget), errors.Is(err, rules.ErrUnsupportedMode),
		errors.Is(err, utils.ErrEmptyURL), errors.Is(err, utils.ErrMissingHost):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, action string, err error) {
	s.logger.Warn(action, logging.Field{Key: "error", Value: err.Error()})
	writeError(w, statusFor(err), err.Error())
}

// --- HTTP handlers ---

// Single page audits

func (s *Server) handleAuditHTML(w http.ResponseWriter, r *http.Request) {
	var body AuditHTMLRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(body.HTML) == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}

	a, err := s.orchestrator.AuditHTML(r.Context(), body.URL, []byte(body.HTML))
	if err != nil {
		s.fail(w, "auditing html", err)
		return
	}
	s.logger.Info("audited html", logging.Field{Key: "url", Value: body.URL})
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAuditURL(w http.ResponseWriter, r *http.Request) {
	var body AuditURLRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	a, err := s.orchestrator.AuditURL(r.Context(), body.URL)
	if err != nil {
		s.fail(w, "auditing url", err)
		return
	}
	s.logger.Info("audited url", logging.Field{Key: "url", Value: a.Target})
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAuditVirtual(w http.ResponseWriter, r *http.Request) {
	var page collector.VirtualPage
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	a, err := s.orchestrator.AuditVirtual(r.Context(), &page)
	if err != nil {
		s.fail(w, "auditing virtual page", err)
		return
	}
	s.logger.Info("audited virtual page", logging.Field{Key: "url", Value: page.URL})
	writeJSON(w, http.StatusOK, a)
}

// History

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.orchestrator.ListRuns(r.Context(), r.URL.Query().Get("target"), limit)
	if err != nil {
		s.fail(w, "listing audits", err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	run, err := s.orchestrator.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "getting audit", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orchestrator.DeleteRun(r.Context(), id); err != nil {
		s.fail(w, "deleting audit", err)
		return
	}
	s.logger.Info("deleted audit", logging.Field{Key: "run_id", Value: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCompliance(w http.ResponseWriter, r *http.Request) {
	run, err := s.orchestrator.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "getting compliance", err)
		return
	}
	writeJSON(w, http.StatusOK, s.orchestrator.Reports().Build(run.Pages).Compliance)
}

// handleGetReport renders a stored run as the JSON audit document, or as
// the HTML report with ?format=html.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	run, err := s.orchestrator.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "getting report", err)
		return
	}
	gen := s.orchestrator.Reports()
	audit := gen.Build(run.Pages)

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := gen.GenerateJSON(w, audit); err != nil {
			s.logger.Warn("rendering json report", logging.Field{Key: "error", Value: err.Error()})
		}
	case "html":
		var buf bytes.Buffer
		if err := gen.GenerateHTML(&buf, audit); err != nil {
			s.fail(w, "rendering html report", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

func (s *Server) handleDiffAudits(w http.ResponseWriter, r *http.Request) {
	diff, err := s.orchestrator.DiffRuns(r.Context(), chi.URLParam(r, "base"), chi.URLParam(r, "head"))
	if err != nil {
		s.fail(w, "diffing audits", err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

// Jobs

func (s *Server) handleStartSiteJob(w http.ResponseWriter, r *http.Request) {
	var body AuditURLRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	job, err := s.orchestrator.StartSiteJob(r.Context(), body.URL)
	if err != nil {
		s.fail(w, "starting site job", err)
		return
	}
	s.logger.Info("started site job", logging.Field{Key: "job_id", Value: job.ID})
	snap, err := s.orchestrator.GetJob(job.ID)
	if err != nil {
		s.fail(w, "getting job", err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.ListJobs())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if err != nil {
		s.fail(w, "getting job", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := s.orchestrator.CancelJob(jobID); err != nil {
		s.fail(w, "canceling job", err)
		return
	}
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	w.WriteHeader(http.StatusNoContent)
}

// WebSockets

// handleSiteWS starts a site audit and streams its events. The final
// message is the finished job, including the audit result.
func (s *Server) handleSiteWS(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if strings.TrimSpace(target) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	job, err := s.orchestrator.StartSiteJob(r.Context(), target)
	if err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		s.logger.Warn("starting site job", logging.Field{Key: "error", Value: err.Error()})
		return
	}

	s.logger.Info("started site job", logging.Field{Key: "job_id", Value: job.ID})
	if snap, err := s.orchestrator.GetJob(job.ID); err == nil {
		_ = conn.WriteJSON(snap)
	}

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			_ = s.orchestrator.CancelJob(job.ID)
			return
		}
	}

	final, err := s.orchestrator.GetJob(job.ID)
	if err != nil {
		return
	}
	_ = conn.WriteJSON(final)
}
