package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.mux.HandleFunc("/api/unlock", s.handleUnlock)
	s.mux.HandleFunc("/api/lock", s.withSession(s.handleLock))
	s.mux.HandleFunc("/api/session", s.withSession(s.handleSession))

	s.mux.HandleFunc("/api/accounts", s.withSession(s.handleAccounts))
	s.mux.HandleFunc("/api/accounts/current", s.withSession(s.handleCurrentAccount))
	s.mux.HandleFunc("/api/accounts/select", s.withSession(s.handleSelectAccount))
	s.mux.HandleFunc("/api/seeds/unique", s.withSession(s.handleUniqueSeed))

	s.mux.HandleFunc("/api/addresses", s.withSession(s.handleAddresses))
	s.mux.HandleFunc("/api/transfers", s.withSession(s.handleTransfers))

	s.mux.HandleFunc("/api/audit", s.withSession(s.handleAudit))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
