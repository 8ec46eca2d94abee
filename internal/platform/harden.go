// Package platform holds process-level protections for secret material.
package platform

import (
	"github.com/awnumar/memguard"
	log "github.com/sirupsen/logrus"
)

// Harden disables core dumps and arranges for memguard to wipe every
// enclave and locked buffer on SIGINT/SIGTERM. Call once from main.
func Harden() {
	if err := DisableCoreDumps(); err != nil {
		log.WithError(err).Warn("could not disable core dumps")
	}
	memguard.CatchInterrupt()
}

// Purge wipes all memguard-managed memory. Deferred from main.
func Purge() { memguard.Purge() }
