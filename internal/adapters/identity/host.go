package identity

import (
	"net/url"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
)

// LiveHost uses the user object the host SDK already parsed.
type LiveHost struct{}

var _ ports.IdentityProvider = LiveHost{}

func (LiveHost) Source() domain.IdentitySource {
	return domain.SourceLiveHost
}

func (LiveHost) Resolve(page ports.Page) (domain.Resolution, bool) {
	if page.Host == nil {
		return domain.Resolution{}, false
	}

	user, ok := page.Host.UnsafeUser()
	if !ok || !user.UserID.Valid() {
		return domain.Resolution{}, false
	}

	initData := page.Host.InitData()
	signed, _ := url.ParseQuery(initData)

	startParam := page.Host.StartParam()
	if startParam == "" {
		startParam = firstValue(pageValues(page.URL), startParamParams)
	}

	return domain.Resolution{
		Source:     domain.SourceLiveHost,
		Identity:   user,
		StartParam: startParam,
		InitData:   initData,
		Signature:  firstValue(signed, signatureParams),
	}, true
}

// InitDataHost stands in for a host SDK when only the raw launch string is at
// hand, as on the command line.
type InitDataHost struct {
	raw        string
	user       domain.IdentityContext
	hasUser    bool
	startParam string
}

var _ ports.HostSDK = InitDataHost{}

func NewInitDataHost(raw string) InitDataHost {
	host := InitDataHost{raw: raw}
	if user, blob, ok := decodeInitData(raw); ok {
		host.user = user
		host.hasUser = true
		host.startParam = blob.Get("start_param")
	}
	return host
}

func (h InitDataHost) UnsafeUser() (domain.IdentityContext, bool) {
	return h.user, h.hasUser
}

func (h InitDataHost) StartParam() string {
	return h.startParam
}

func (h InitDataHost) InitData() string {
	return h.raw
}
