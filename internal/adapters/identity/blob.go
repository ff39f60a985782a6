package identity

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
)

// EmbeddedBlob decodes the host's init-data blob carried in a URL parameter.
// Any decode failure reads as absence.
type EmbeddedBlob struct{}

var _ ports.IdentityProvider = EmbeddedBlob{}

type blobUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (EmbeddedBlob) Source() domain.IdentitySource {
	return domain.SourceEmbeddedBlob
}

func (EmbeddedBlob) Resolve(page ports.Page) (domain.Resolution, bool) {
	values := pageValues(page.URL)
	raw := firstValue(values, blobParams)
	if raw == "" {
		return domain.Resolution{}, false
	}

	user, blob, ok := decodeInitData(raw)
	if !ok {
		return domain.Resolution{}, false
	}

	startParam := blob.Get("start_param")
	if startParam == "" {
		startParam = firstValue(values, startParamParams)
	}

	return domain.Resolution{
		Source:     domain.SourceEmbeddedBlob,
		Identity:   user,
		StartParam: startParam,
		InitData:   raw,
		Signature:  firstValue(blob, signatureParams),
	}, true
}

// decodeInitData reads the user object out of a signed launch string.
func decodeInitData(raw string) (domain.IdentityContext, url.Values, bool) {
	blob, err := url.ParseQuery(raw)
	if err != nil {
		return domain.IdentityContext{}, nil, false
	}

	encodedUser := strings.TrimSpace(blob.Get(blobUserKey))
	if encodedUser == "" {
		return domain.IdentityContext{}, nil, false
	}

	var user blobUser
	if err := json.Unmarshal([]byte(encodedUser), &user); err != nil {
		return domain.IdentityContext{}, nil, false
	}

	id := domain.UserID(user.ID)
	if !id.Valid() {
		return domain.IdentityContext{}, nil, false
	}

	return domain.IdentityContext{
		UserID:    id,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, blob, true
}

// DefaultProviders is the precedence order: query parameters, live host,
// embedded blob.
func DefaultProviders() []ports.IdentityProvider {
	return []ports.IdentityProvider{QueryParams{}, LiveHost{}, EmbeddedBlob{}}
}
