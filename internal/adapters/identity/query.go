package identity

import (
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
)

// QueryParams reads the identity straight from recognized URL parameters.
type QueryParams struct{}

var _ ports.IdentityProvider = QueryParams{}

func (QueryParams) Source() domain.IdentitySource {
	return domain.SourceQueryParams
}

func (QueryParams) Resolve(page ports.Page) (domain.Resolution, bool) {
	if page.URL == nil {
		return domain.Resolution{}, false
	}

	query := page.URL.Query()
	id, ok := firstUserID(query)
	if !ok {
		return domain.Resolution{}, false
	}

	return domain.Resolution{
		Source: domain.SourceQueryParams,
		Identity: domain.IdentityContext{
			UserID:    id,
			Username:  query.Get(usernameParam),
			FirstName: query.Get(firstNameParam),
			LastName:  query.Get(lastNameParam),
		},
		StartParam: firstValue(query, startParamParams),
		InitData:   page.URL.RawQuery,
		Signature:  firstValue(query, signatureParams),
	}, true
}
