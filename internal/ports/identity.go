package ports

import (
	"net/url"

	"github.com/bnema/miniapp-telemetry/internal/domain"
)

// HostSDK is the live mini-app host object, when one is reachable.
type HostSDK interface {
	UnsafeUser() (domain.IdentityContext, bool)
	StartParam() string
	// InitData is the raw signed launch string the host received.
	InitData() string
}

type Page struct {
	URL  *url.URL
	Host HostSDK
}

type IdentityProvider interface {
	Source() domain.IdentitySource
	Resolve(page Page) (domain.Resolution, bool)
}
