package auth

import (
	"context"

	"github.com/colocash/backend/internal/models"
)

// Authenticator is the credential layer the HTTP surface talks to. Keeping
// it an interface leaves room for passkey or OAuth implementations later.
type Authenticator interface {
	// Register creates an account. The credential format is up to the
	// implementation; for passwords it is the cleartext password.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user when the credential matches. Callers
	// must not be able to tell a missing account from a bad credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
