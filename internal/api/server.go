package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/dashboard"
	"github.com/IshaanNene/BeritaKepri/internal/engine"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/portal"
	"github.com/IshaanNene/BeritaKepri/internal/storage"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Job statuses.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Server exposes scrape runs over a small JSON API. One scrape runs at a
// time; a second request while one is in progress gets 409.
type Server struct {
	mux     *http.ServeMux
	cfg     *config.Config
	runner  *engine.Runner
	metrics *observability.Metrics
	logger  *slog.Logger

	runMu sync.Mutex

	jobs   map[string]*Job
	order  []string
	jobsMu sync.RWMutex
}

// Job is a finished run kept for inspection and download.
type Job struct {
	ID                  string           `json:"id"`
	Status              string           `json:"status"`
	Request             engine.Job       `json:"request"`
	Message             string           `json:"message"`
	Error               string           `json:"error,omitempty"`
	ClassificationError string           `json:"classification_error,omitempty"`
	ArticleCount        int              `json:"article_count"`
	Stats               portal.Stats     `json:"stats"`
	StartedAt           time.Time        `json:"started_at"`
	Duration            string           `json:"duration"`
	Articles            []*types.Article `json:"articles,omitempty"`
}

type scrapeRequest struct {
	Portal   string `json:"portal"`
	Start    string `json:"start"`
	End      string `json:"end"`
	MaxPages int    `json:"max_pages"`
	Mode     string `json:"mode"`
	Side     string `json:"side"`
}

type portalView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ListingURL    string `json:"listing_url"`
	DateAtListing bool   `json:"date_at_listing"`
	DateFormat    string `json:"date_format"`
}

// NewServer creates a new API server. metrics may be nil.
func NewServer(cfg *config.Config, runner *engine.Runner, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		cfg:     cfg,
		runner:  runner,
		metrics: metrics,
		logger:  logger.With("component", "api_server"),
		jobs:    make(map[string]*Job),
	}

	s.registerRoutes()
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.API.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("API server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/portals", s.handlePortals)

	s.mux.HandleFunc("POST /api/scrape", s.handleScrape)
	s.mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	s.mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	s.mux.HandleFunc("GET /api/jobs/{id}/export", s.handleExport)

	s.mux.HandleFunc("POST /api/taxonomy/reload", s.handleTaxonomyReload)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)

	s.mux.Handle("GET /{$}", dashboard.New("", s.logger))

	if s.metrics != nil {
		s.mux.Handle("GET "+s.cfg.Metrics.Path, s.metrics)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handlePortals(w http.ResponseWriter, r *http.Request) {
	portals := s.runner.Registry().List()
	out := make([]portalView, 0, len(portals))
	for _, p := range portals {
		out = append(out, portalView{
			ID:            p.ID,
			Name:          p.Name,
			ListingURL:    p.ListingURL,
			DateAtListing: p.DateAtListing,
			DateFormat:    p.DateFormat,
		})
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var body scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	job, err := body.job()
	if err == nil {
		err = s.runner.Validate(job)
	}
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.runMu.TryLock() {
		s.errorResponse(w, http.StatusConflict, "a scrape is already running")
		return
	}
	defer s.runMu.Unlock()

	res, err := s.runner.Run(r.Context(), job)
	if res == nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	record := newJob(job, res, err)
	s.remember(record)

	if err != nil {
		s.logger.Warn("scrape did not finish", "job", record.ID, "stage", "run", "error", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, record)
		return
	}
	s.jsonResponse(w, http.StatusCreated, record)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	jobs := make([]Job, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		j := *s.jobs[s.order[i]]
		j.Articles = nil
		jobs = append(jobs, j)
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.job(r.PathValue("id"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	job, ok := s.job(r.PathValue("id"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = storage.FormatXLSX
	}
	switch format {
	case storage.FormatXLSX, storage.FormatCSV, storage.FormatJSON, storage.FormatJSONL:
	default:
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	if len(job.Articles) == 0 {
		s.errorResponse(w, http.StatusNotFound, "job has no articles to export")
		return
	}

	var buf bytes.Buffer
	if err := storage.Encode(&buf, format, job.Articles); err != nil {
		s.logger.Error("export failed", "job", job.ID, "format", format, "stage", "export", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "export failed")
		return
	}

	name := storage.FileName(job.Request.Portal, job.Request.Start, job.Request.End, format)
	w.Header().Set("Content-Type", storage.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleTaxonomyReload(w http.ResponseWriter, r *http.Request) {
	cache := s.runner.Taxonomies()
	if cache == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "no taxonomy configured")
		return
	}

	cache.Invalidate()
	tax, err := cache.Get("", s.cfg.Taxonomy.MinTokenLength)
	if err != nil {
		s.logger.Error("taxonomy reload failed", "stage", "taxonomy", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrTaxonomyUnavailable) {
			status = http.StatusServiceUnavailable
		}
		s.errorResponse(w, status, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "reloaded",
		"categories": tax.Len(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		s.jsonResponse(w, http.StatusOK, map[string]int64{})
		return
	}
	s.jsonResponse(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) job(id string) (*Job, bool) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

// remember stores a finished run, evicting the oldest beyond the limit.
func (s *Server) remember(job *Job) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	for len(s.order) > s.cfg.API.MaxResults {
		delete(s.jobs, s.order[0])
		s.order = s.order[1:]
	}
}

func newJob(req engine.Job, res *engine.Result, runErr error) *Job {
	job := &Job{
		ID:           res.RunID,
		Status:       StatusCompleted,
		Request:      req,
		ArticleCount: len(res.Articles),
		Stats:        res.Stats,
		StartedAt:    res.StartedAt,
		Duration:     res.Duration.Round(time.Millisecond).String(),
		Articles:     res.Articles,
	}
	job.Request.Mode = res.Mode
	job.Request.MaxPages = res.MaxPages

	if res.ClassificationErr != nil {
		job.ClassificationError = res.ClassificationErr.Error()
	}

	switch {
	case runErr != nil:
		job.Status = StatusCancelled
		job.Error = runErr.Error()
		job.Message = fmt.Sprintf("run stopped early with %d articles", job.ArticleCount)
	case res.Empty():
		job.Message = "no articles found for the selected portal and date range"
	default:
		job.Message = fmt.Sprintf("articles found: %d", job.ArticleCount)
	}
	return job
}

func (b scrapeRequest) job() (engine.Job, error) {
	job := engine.Job{
		Portal:   b.Portal,
		MaxPages: b.MaxPages,
		Mode:     b.Mode,
		Side:     b.Side,
	}
	var err error
	if b.Start != "" {
		if job.Start, err = time.Parse(types.DateLayout, b.Start); err != nil {
			return job, fmt.Errorf("%w: start must be YYYY-MM-DD", types.ErrInvalidRange)
		}
	}
	if b.End != "" {
		if job.End, err = time.Parse(types.DateLayout, b.End); err != nil {
			return job, fmt.Errorf("%w: end must be YYYY-MM-DD", types.ErrInvalidRange)
		}
	}
	return job, nil
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, msg string) {
	s.jsonResponse(w, status, map[string]string{"error": msg})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("response encode failed", "error", err)
	}
}
