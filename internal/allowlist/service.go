package allowlist

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "nid-gateway/pkg/domain-errors"
)

// Service authorizes inbound callers against the allowlist.
type Service struct {
	store Store
}

// NewService builds the allowlist service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("allowlist store is required")
	}
	return &Service{store: store}, nil
}

// Authorize resolves the system registered for ip and, when the system
// carries an API key hash, verifies apiKey against it.
func (s *Service) Authorize(ctx context.Context, ip, apiKey string) (System, error) {
	system, err := s.store.FindByIP(ctx, ip)
	if errors.Is(err, ErrNotFound) {
		return System{}, dErrors.New(dErrors.CodeForbidden, "client system not allowlisted")
	}
	if err != nil {
		return System{}, dErrors.Wrap(dErrors.CodeInternal, "allowlist lookup failed", err)
	}

	if !system.Active {
		return System{}, dErrors.New(dErrors.CodeForbidden, "client system deactivated")
	}

	if system.APIKeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(system.APIKeyHash), []byte(apiKey)); err != nil {
			return System{}, dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
		}
	}

	return system, nil
}
