package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"daycal/internal/config"
	"daycal/internal/daydata"
	"daycal/internal/ics"
	appLog "daycal/internal/log"
	"daycal/internal/overview"
	"daycal/internal/relative"
)

// Server exposes the day data, derived views and the ICS export over HTTP.
type Server struct {
	cfg      *config.Config
	store    *daydata.Store
	view     *overview.Service
	exporter *ics.Exporter

	router   *chi.Mux
	validate *validator.Validate

	// Formatters per locale, built on first use.
	fmtMu      sync.RWMutex
	formatters map[string]*relative.Formatter
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, store *daydata.Store, view *overview.Service, exporter *ics.Exporter) *Server {
	s := &Server{
		cfg:        cfg,
		store:      store,
		view:       view,
		exporter:   exporter,
		router:     chi.NewRouter(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		formatters: make(map[string]*relative.Formatter),
	}
	if f := view.Formatter(); f != nil {
		s.formatters[f.Patterns().Locale] = f
	}
	s.registerRoutes()
	return s
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	appLog.Info("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) registerRoutes() {
	r := s.router

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(s.cfg.HTTP.MaxRequestsPerSecond, time.Second))
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		r.Use(s.basicAuthMiddleware)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/data/{year}.json", s.handleYearFile)

	r.Route("/api", func(r chi.Router) {
		r.Get("/today", s.handleToday)
		r.Get("/years", s.handleYears)
		r.Get("/days/{date}", s.handleDay)
		r.Get("/relative", s.handleRelative)
		r.Get("/weeks/{year}", s.handleWeeks)
		r.Get("/holidays/{year}", s.handleHolidays)
		r.Get("/moon/upcoming", s.handleMoon)
		r.Post("/export", s.handleExport)
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty user or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="daycal", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// formatter returns the formatter of a locale, loading it once.
func (s *Server) formatter(locale string) (*relative.Formatter, error) {
	s.fmtMu.RLock()
	f, ok := s.formatters[locale]
	s.fmtMu.RUnlock()
	if ok {
		return f, nil
	}

	p, err := relative.Load(locale)
	if err != nil {
		return nil, err
	}
	f = relative.New(p)

	s.fmtMu.Lock()
	s.formatters[locale] = f
	s.fmtMu.Unlock()
	return f, nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ResolveLocationOrLocal loads an IANA zone, falling back to time.Local.
func ResolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
