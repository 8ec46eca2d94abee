package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Techspire/trinity-wallet/internal/auth"
	"github.com/Techspire/trinity-wallet/internal/derivation"
	"github.com/Techspire/trinity-wallet/internal/seedvault"
)

type session struct {
	id       string
	vault    *seedvault.Vault
	gateway  *derivation.Gateway
	created  time.Time
	lastUsed time.Time
}

func (s *Server) openSession(v *seedvault.Vault) *session {
	now := time.Now()
	sess := &session{
		id:       uuid.NewString(),
		vault:    v,
		created:  now,
		lastUsed: now,
	}
	sess.gateway = derivation.NewGateway(v, s.engine, s.logger.WithField("session", sess.id[:8]))

	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.sessions.Set(float64(n))
	return sess
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastUsed = time.Now()
	}
	return sess, ok
}

func (s *Server) closeSession(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if ok {
		sess.vault.Close()
		s.metrics.sessions.Set(float64(n))
	}
	return ok
}

func (s *Server) expireIdle(now time.Time) {
	var idle []string
	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.cfg.SessionIdle || now.Sub(sess.created) > s.cfg.TokenTTL {
			idle = append(idle, id)
		}
	}
	s.mu.Unlock()

	for _, id := range idle {
		if s.closeSession(id) {
			s.logger.WithFields(log.Fields{"session": id[:8], "op": "expire"}).Info("session locked")
		}
	}
}

func (s *Server) lockAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.closeSession(id)
	}
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session)

// withSession resolves the bearer token's session and applies the
// per-session rate limit.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.MustClaims(r)
		if err != nil {
			http.Error(w, "no auth context", http.StatusUnauthorized)
			return
		}
		sess, ok := s.lookup(claims.Session)
		if !ok {
			http.Error(w, "vault locked", http.StatusUnauthorized)
			return
		}
		if !s.rlSession.allow(sess.id) {
			tooMany(w, 1)
			return
		}
		h(w, r, sess)
	}
}
