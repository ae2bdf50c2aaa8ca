// Package auth provides player registration, credential checks and JWT
// session tokens.
package auth

import (
	"context"

	"github.com/mmynk/roulette/internal/models"
)

// Authenticator registers players and verifies their credentials.
// The service layer only depends on this interface, so the credential
// method can change without touching the RPC handlers.
type Authenticator interface {
	// Register creates a player account funded with the starting balance.
	Register(ctx context.Context, email, username, credential string) (*models.User, error)

	// Authenticate returns the player when the credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}
