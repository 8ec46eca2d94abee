package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims bind a bearer token to one unlocked vault session.
type Claims struct {
	Session string `json:"sid"`
	jwt.RegisteredClaims
}

type UnlockRequest struct {
	Passphrase string `json:"passphrase"`
	Account    string `json:"account"`
}

type UnlockResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   string    `json:"account,omitempty"`
}
