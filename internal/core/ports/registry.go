package ports

import (
	"context"

	"github.com/melih/dockship/internal/core/domain"
)

// RegistryService resolves the caller's account and registry credentials.
// Implementations return domain.ErrCredentialsUnavailable when the identity
// provider has nothing to sign with.
type RegistryService interface {
	AccountID(ctx context.Context, region string) (string, error)
	Credentials(ctx context.Context, region string) (domain.Credentials, error)
}

// CredentialStore is the engine's locally cached credential file.
type CredentialStore interface {
	Reset() error
	Read() (map[string]any, error)
}

// HostProbe detects managed hosts whose cached credentials must be purged.
type HostProbe interface {
	Restricted() bool
}
