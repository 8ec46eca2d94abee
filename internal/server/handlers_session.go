package server

import (
	"errors"
	"math"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Techspire/trinity-wallet/internal/auth"
	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/seedvault"
)

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	ip := getClientIP(r)
	if !s.rlUnlockIP.allow(ip) {
		s.metrics.unlockFailures.WithLabelValues("rate").Inc()
		tooMany(w, int(math.Ceil(1/s.cfg.UnlockRate)))
		return
	}

	var req auth.UnlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	passphrase := []byte(req.Passphrase)
	defer cr.Zero(passphrase)

	key, err := s.keys.Derive(r.Context(), passphrase)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, auth.ErrBadPassphrase):
			reason = "passphrase"
		case errors.Is(err, auth.ErrNotInitialized):
			reason = "uninitialized"
		}
		s.metrics.unlockFailures.WithLabelValues(reason).Inc()
		s.logger.WithFields(log.Fields{"op": "unlock", "ip": ip, "reason": reason}).Warn("unlock rejected")
		writeError(w, s.logger, err)
		return
	}

	opts := []seedvault.Option{seedvault.WithLogger(s.logger), seedvault.WithAuditLog(s.audit)}
	if s.alias != "" {
		opts = append(opts, seedvault.WithAlias(s.alias))
	}
	if req.Account != "" {
		opts = append(opts, seedvault.WithAccount(req.Account))
	}
	v, err := seedvault.Open(s.store, key[:], opts...)
	cr.WipeKey(&key)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sess := s.openSession(v)
	token, exp, err := s.signer.IssueToken(sess.id)
	if err != nil {
		s.closeSession(sess.id)
		writeError(w, s.logger, err)
		return
	}

	s.logger.WithFields(log.Fields{"op": "unlock", "session": sess.id[:8], "account": v.CurrentAccount().Short()}).Info("vault unlocked")
	writeJSON(w, auth.UnlockResponse{
		Token:     token,
		ExpiresAt: exp,
		Account:   string(v.CurrentAccount()),
	})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.closeSession(sess.id)
	s.logger.WithFields(log.Fields{"op": "lock", "session": sess.id[:8]}).Info("vault locked")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, map[string]any{
		"session":  sess.id,
		"account":  sess.vault.CurrentAccount(),
		"has_data": sess.vault.HasData(r.Context()),
		"created":  sess.created.UTC().Format(time.RFC3339),
	})
}
