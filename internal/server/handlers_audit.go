package server

import (
	"net/http"

	"github.com/Techspire/trinity-wallet/internal/audit"
)

type auditResp struct {
	Entries []audit.Entry `json:"entries"`
	Valid   bool          `json:"valid"`
	Error   string        `json:"error,omitempty"`
}

// handleAudit returns the audit chain and whether it still verifies. Entries
// carry hashed account ids only.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request, _ *session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	entries, err := s.audit.Snapshot()
	resp := auditResp{Entries: entries, Valid: err == nil}
	if resp.Entries == nil {
		resp.Entries = []audit.Entry{}
	}
	if err != nil {
		s.logger.WithError(err).Error("audit chain failed verification")
		resp.Error = err.Error()
	}
	writeJSON(w, resp)
}
