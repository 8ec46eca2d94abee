package server

import (
	"errors"
	"net/http"

	"github.com/Techspire/trinity-wallet/internal/seedvault"
)

type nameReq struct {
	Name string `json:"name"`
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request, sess *session) {
	v := sess.vault
	switch r.Method {
	case http.MethodGet:
		ids, err := v.Accounts(r.Context())
		if errors.Is(err, seedvault.ErrNoVaultData) {
			ids, err = []seedvault.AccountID{}, nil
		}
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, map[string]any{"accounts": ids, "current": v.CurrentAccount()})

	case http.MethodPost:
		var req seedInput
		if !decodeJSON(w, r, &req) {
			return
		}
		seed, err := req.seed()
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		defer seed.Wipe()

		if err := v.AddUniqueAccount(r.Context(), req.Name, seed); err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, map[string]any{"account": v.CurrentAccount()})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCurrentAccount(w http.ResponseWriter, r *http.Request, sess *session) {
	v := sess.vault
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]any{"account": v.CurrentAccount()})

	case http.MethodPut:
		var req nameReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := v.RenameAccount(r.Context(), req.Name); err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, map[string]any{"account": v.CurrentAccount()})

	case http.MethodDelete:
		if err := v.RemoveAccount(r.Context()); err != nil {
			writeError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSelectAccount(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req nameReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, s.logger, seedvault.ErrEmptyName)
		return
	}
	writeJSON(w, map[string]any{"account": sess.vault.SelectAccount(req.Name)})
}

func (s *Server) handleUniqueSeed(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req seedInput
	if !decodeJSON(w, r, &req) {
		return
	}
	seed, err := req.seed()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	defer seed.Wipe()

	unique, err := sess.vault.IsUniqueSeed(r.Context(), seed)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, map[string]bool{"unique": unique})
}
