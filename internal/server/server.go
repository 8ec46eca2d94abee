// Package server exposes unlocked vault sessions over a local HTTP API.
// Seeds never leave the process: handlers only return account ids,
// addresses and signed transactions.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Techspire/trinity-wallet/internal/audit"
	"github.com/Techspire/trinity-wallet/internal/auth"
	"github.com/Techspire/trinity-wallet/internal/config"
	"github.com/Techspire/trinity-wallet/internal/derivation"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

// Deps are the collaborators a Server drives.
type Deps struct {
	Store  storage.BlobStore
	Engine derivation.Engine
	// Keys defaults to auth.NewKeys(Store).
	Keys   *auth.Keys
	Alias  string
	// Audit defaults to an in-memory log.
	Audit  *audit.Log
	Logger *log.Entry
	// Registry defaults to a fresh registry served on /metrics.
	Registry *prometheus.Registry
}

type Server struct {
	cfg config.ServerConfig

	store  storage.BlobStore
	keys   *auth.Keys
	engine derivation.Engine
	alias  string
	audit  *audit.Log
	logger *log.Entry

	mux     *http.ServeMux
	signer  *auth.JWTSigner
	metrics *metrics

	mu       sync.Mutex
	sessions map[string]*session

	rlUnlockIP *multiLimiter
	rlSession  *multiLimiter
}

func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("server: store required")
	}
	if deps.Engine == nil {
		return nil, errors.New("server: derivation engine required")
	}
	if deps.Keys == nil {
		deps.Keys = auth.NewKeys(deps.Store)
	}
	if deps.Audit == nil {
		deps.Audit = audit.New()
	}
	if deps.Logger == nil {
		deps.Logger = log.WithField("component", "server")
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	signer, err := auth.NewEphemeralSigner(cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		store:      deps.Store,
		keys:       deps.Keys,
		engine:     deps.Engine,
		alias:      deps.Alias,
		audit:      deps.Audit,
		logger:     deps.Logger,
		mux:        http.NewServeMux(),
		signer:     signer,
		sessions:   map[string]*session{},
		rlUnlockIP: newMultiLimiter(rate.Limit(cfg.UnlockRate), cfg.UnlockBurst, time.Hour),
		rlSession:  newMultiLimiter(rate.Limit(cfg.APIRate), cfg.APIBurst, cfg.TokenTTL),
	}
	if s.metrics, err = newMetrics(deps.Registry); err != nil {
		return nil, err
	}

	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	defer func() {
		if p := recover(); p != nil {
			s.logger.WithField("path", r.URL.Path).Errorf("panic: %v", p)
			http.Error(rec, "internal error", http.StatusInternalServerError)
		}
		s.metrics.observe(r.Method, r.URL.Path, rec.code, time.Since(start))
	}()

	s.addDefaultHeaders(rec, r)
	if r.Method == http.MethodOptions {
		rec.WriteHeader(http.StatusNoContent)
		return
	}

	path := r.URL.Path
	if strings.HasPrefix(path, "/api/") && !s.isPublic(path) {
		auth.AuthRequired(s.signer)(s.mux).ServeHTTP(rec, r)
		return
	}
	s.mux.ServeHTTP(rec, r)
}

func (s *Server) Handler() http.Handler {
	return s
}

func (s *Server) isPublic(path string) bool {
	switch path {
	case "/api/health", "/api/unlock":
		return true
	default:
		return false
	}
}

func (s *Server) addDefaultHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
}

// Run expires idle sessions until ctx is done, then locks every session.
func (s *Server) Run(ctx context.Context) {
	tick := time.NewTicker(s.sweepInterval())
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			s.lockAll()
			return
		case now := <-tick.C:
			s.expireIdle(now)
		}
	}
}

func (s *Server) sweepInterval() time.Duration {
	if d := s.cfg.SessionIdle / 4; d > time.Second {
		return d
	}
	return time.Second
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
