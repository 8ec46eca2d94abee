package server

import (
	"net/http"

	"github.com/Techspire/trinity-wallet/internal/derivation"
)

type transferReq struct {
	Transfers []derivation.Transfer       `json:"transfers"`
	Options   *derivation.TransferOptions `json:"options,omitempty"`
}

func (s *Server) handleAddresses(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req derivation.AddressOptions
	if !decodeJSON(w, r, &req) {
		return
	}
	addrs, err := sess.gateway.GenerateAddress(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, map[string]any{"addresses": addrs})
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req transferReq
	if !decodeJSON(w, r, &req) {
		return
	}
	bundle, err := sess.gateway.PrepareTransfers(r.Context(), req.Transfers, req.Options)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, bundle)
}
