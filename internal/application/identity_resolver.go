package application

import (
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
)

// IdentityResolver asks each provider in order and keeps the first answer.
// Sources are never merged.
type IdentityResolver struct {
	providers []ports.IdentityProvider
}

func NewIdentityResolver(providers ...ports.IdentityProvider) *IdentityResolver {
	return &IdentityResolver{providers: providers}
}

func (r *IdentityResolver) Resolve(page ports.Page) domain.Resolution {
	for _, provider := range r.providers {
		resolution, ok := provider.Resolve(page)
		if !ok || !resolution.Identity.UserID.Valid() {
			continue
		}
		if resolution.Source == "" {
			resolution.Source = provider.Source()
		}
		return resolution
	}

	return domain.UnavailableResolution()
}
