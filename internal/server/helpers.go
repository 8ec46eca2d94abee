package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Techspire/trinity-wallet/internal/auth"
	"github.com/Techspire/trinity-wallet/internal/derivation"
	"github.com/Techspire/trinity-wallet/internal/mnemonic"
	"github.com/Techspire/trinity-wallet/internal/seedvault"
)

const maxBodyBytes = 64 << 10

var errSeedRequired = errors.New("exactly one of mnemonic or seed_hex is required")

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func tooMany(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	http.Error(w, "too many requests", http.StatusTooManyRequests)
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// decodeJSON reads a bounded JSON body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, seedvault.ErrNoVaultData),
		errors.Is(err, seedvault.ErrUnknownAccount):
		return http.StatusNotFound
	case errors.Is(err, seedvault.ErrVaultKeyMismatch),
		errors.Is(err, seedvault.ErrClosed),
		errors.Is(err, auth.ErrBadPassphrase):
		return http.StatusUnauthorized
	case errors.Is(err, seedvault.ErrAccountExists),
		errors.Is(err, seedvault.ErrStorageIntegrity),
		errors.Is(err, auth.ErrNotInitialized),
		errors.Is(err, seedvault.ErrSeedExists):
		return http.StatusConflict
	case errors.Is(err, seedvault.ErrEmptyName),
		errors.Is(err, seedvault.ErrEmptySeed),
		errors.Is(err, auth.ErrEmptyPassphrase),
		errors.Is(err, mnemonic.ErrInvalidMnemonic),
		errors.Is(err, errSeedRequired),
		errors.Is(err, derivation.ErrInvalidSecurity),
		errors.Is(err, derivation.ErrInvalidTotal),
		errors.Is(err, derivation.ErrInvalidIndex),
		errors.Is(err, derivation.ErrInvalidAmount),
		errors.Is(err, derivation.ErrInvalidTransfer),
		errors.Is(err, derivation.ErrNoInputs),
		errors.Is(err, derivation.ErrUnsupportedInput):
		return http.StatusBadRequest
	case errors.Is(err, derivation.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError maps err onto a status. Server-side failures are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, logger log.FieldLogger, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		msg = "internal error"
	}
	writeJSONStatus(w, code, map[string]string{"error": msg})
}

// seedInput carries a seed either as a BIP-39 phrase or as raw hex.
type seedInput struct {
	Name       string `json:"name,omitempty"`
	Mnemonic   string `json:"mnemonic,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
	SeedHex    string `json:"seed_hex,omitempty"`
}

func (in seedInput) seed() (seedvault.Seed, error) {
	phrase := strings.TrimSpace(in.Mnemonic)
	raw := strings.TrimSpace(in.SeedHex)
	switch {
	case phrase != "" && raw == "":
		s, err := mnemonic.ToSeed(phrase, in.Passphrase)
		return seedvault.Seed(s), err
	case raw != "" && phrase == "":
		s, err := hex.DecodeString(raw)
		if err != nil || len(s) == 0 {
			return nil, errSeedRequired
		}
		return seedvault.Seed(s), nil
	}
	return nil, errSeedRequired
}
