package identity

import (
	"net/url"
	"testing"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	user       domain.IdentityContext
	ok         bool
	startParam string
	initData   string
}

func (h fakeHost) UnsafeUser() (domain.IdentityContext, bool) { return h.user, h.ok }
func (h fakeHost) StartParam() string                         { return h.startParam }
func (h fakeHost) InitData() string                           { return h.initData }

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func initBlob(user string, extra url.Values) string {
	values := url.Values{}
	for k, v := range extra {
		values[k] = v
	}
	values.Set("user", user)
	return values.Encode()
}

func TestQueryParamsBuildsIdentityFromRecognizedParameters(t *testing.T) {
	t.Parallel()

	page := ports.Page{URL: mustURL(t, "https://game.example/?tg_id=42&username=neo&first_name=Thomas&last_name=Anderson&start_param=ref1&signature=sig")}

	res, ok := QueryParams{}.Resolve(page)
	require.True(t, ok)
	assert.Equal(t, domain.SourceQueryParams, res.Source)
	assert.Equal(t, domain.IdentityContext{UserID: 42, Username: "neo", FirstName: "Thomas", LastName: "Anderson"}, res.Identity)
	assert.Equal(t, "ref1", res.StartParam)
	assert.Equal(t, "sig", res.Signature)
	assert.Equal(t, page.URL.RawQuery, res.InitData)
}

func TestQueryParamsRequiresNumericPositiveID(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"https://game.example/",
		"https://game.example/?telegram_id=",
		"https://game.example/?telegram_id=abc",
		"https://game.example/?telegram_id=0",
		"https://game.example/?telegram_id=-5",
	} {
		_, ok := QueryParams{}.Resolve(ports.Page{URL: mustURL(t, raw)})
		assert.False(t, ok, raw)
	}

	_, ok := QueryParams{}.Resolve(ports.Page{})
	assert.False(t, ok)
}

func TestQueryParamsPrefersFirstRecognizedIDParameter(t *testing.T) {
	t.Parallel()

	res, ok := QueryParams{}.Resolve(ports.Page{URL: mustURL(t, "https://game.example/?user_id=3&telegram_id=1")})
	require.True(t, ok)
	assert.Equal(t, domain.UserID(1), res.Identity.UserID)
}

func TestQueryParamsSkipsUnparseableIDParameter(t *testing.T) {
	t.Parallel()

	res, ok := QueryParams{}.Resolve(ports.Page{URL: mustURL(t, "https://game.example/?telegram_id=abc&tg_id=0&user_id=7")})
	require.True(t, ok)
	assert.Equal(t, domain.UserID(7), res.Identity.UserID)
}

func TestLiveHostUsesParsedUser(t *testing.T) {
	t.Parallel()

	host := fakeHost{
		user:       domain.IdentityContext{UserID: 77, Username: "trinity"},
		ok:         true,
		startParam: "promo",
		initData:   "query_id=AA&user=%7B%7D&hash=deadbeef",
	}

	res, ok := LiveHost{}.Resolve(ports.Page{Host: host})
	require.True(t, ok)
	assert.Equal(t, domain.SourceLiveHost, res.Source)
	assert.Equal(t, domain.UserID(77), res.Identity.UserID)
	assert.Equal(t, "promo", res.StartParam)
	assert.Equal(t, "deadbeef", res.Signature)
	assert.Equal(t, host.initData, res.InitData)
}

func TestLiveHostAbsentOrWithoutUser(t *testing.T) {
	t.Parallel()

	_, ok := LiveHost{}.Resolve(ports.Page{})
	assert.False(t, ok)

	_, ok = LiveHost{}.Resolve(ports.Page{Host: fakeHost{ok: false}})
	assert.False(t, ok)

	_, ok = LiveHost{}.Resolve(ports.Page{Host: fakeHost{ok: true}})
	assert.False(t, ok)
}

func TestEmbeddedBlobExtractsUserFromQuery(t *testing.T) {
	t.Parallel()

	blob := initBlob(`{"id":1001,"username":"morpheus","first_name":"Laurence"}`, url.Values{
		"hash":        {"cafebabe"},
		"start_param": {"level9"},
	})
	page := ports.Page{URL: mustURL(t, "https://game.example/?tgWebAppData="+url.QueryEscape(blob))}

	res, ok := EmbeddedBlob{}.Resolve(page)
	require.True(t, ok)
	assert.Equal(t, domain.SourceEmbeddedBlob, res.Source)
	assert.Equal(t, domain.IdentityContext{UserID: 1001, Username: "morpheus", FirstName: "Laurence"}, res.Identity)
	assert.Equal(t, "level9", res.StartParam)
	assert.Equal(t, "cafebabe", res.Signature)
	assert.Equal(t, blob, res.InitData)
}

func TestEmbeddedBlobExtractsUserFromFragment(t *testing.T) {
	t.Parallel()

	blob := initBlob(`{"id":5,"username":"oracle"}`, nil)
	page := ports.Page{URL: mustURL(t, "https://game.example/#tgWebAppData="+url.QueryEscape(blob)+"&tgWebAppVersion=7.0")}

	res, ok := EmbeddedBlob{}.Resolve(page)
	require.True(t, ok)
	assert.Equal(t, domain.UserID(5), res.Identity.UserID)
	assert.Equal(t, "oracle", res.Identity.Username)
}

func TestEmbeddedBlobMalformedIsAbsent(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"missing param": "https://game.example/?foo=bar",
		"bad escape":    "https://game.example/?tgWebAppData=" + url.QueryEscape("user=%zz"),
		"no user key":   "https://game.example/?tgWebAppData=" + url.QueryEscape("query_id=1"),
		"bad json":      "https://game.example/?tgWebAppData=" + url.QueryEscape(initBlob(`{"id":`, nil)),
		"string id":     "https://game.example/?tgWebAppData=" + url.QueryEscape(initBlob(`{"id":"12"}`, nil)),
		"zero id":       "https://game.example/?tgWebAppData=" + url.QueryEscape(initBlob(`{"id":0}`, nil)),
	}

	for name, raw := range testCases {
		t.Run(name, func(t *testing.T) {
			_, ok := EmbeddedBlob{}.Resolve(ports.Page{URL: mustURL(t, raw)})
			assert.False(t, ok)
		})
	}
}

func TestDefaultProvidersOrder(t *testing.T) {
	t.Parallel()

	providers := DefaultProviders()
	require.Len(t, providers, 3)
	assert.Equal(t, domain.SourceQueryParams, providers[0].Source())
	assert.Equal(t, domain.SourceLiveHost, providers[1].Source())
	assert.Equal(t, domain.SourceEmbeddedBlob, providers[2].Source())
}

func TestInitDataHostFeedsLiveHostProvider(t *testing.T) {
	host := NewInitDataHost(initBlob(`{"id":77,"username":"bob"}`, url.Values{
		"start_param": {"ref-9"},
		"hash":        {"deadbeef"},
	}))

	user, ok := host.UnsafeUser()
	require.True(t, ok)
	assert.Equal(t, domain.UserID(77), user.UserID)

	res, ok := LiveHost{}.Resolve(ports.Page{URL: mustURL(t, "https://game.example.com/"), Host: host})
	require.True(t, ok)
	assert.Equal(t, domain.SourceLiveHost, res.Source)
	assert.Equal(t, "bob", res.Identity.Username)
	assert.Equal(t, "ref-9", res.StartParam)
	assert.Equal(t, "deadbeef", res.Signature)
	assert.Equal(t, host.InitData(), res.InitData)
}

func TestInitDataHostWithoutUser(t *testing.T) {
	host := NewInitDataHost("auth_date=1700000000")

	_, ok := host.UnsafeUser()
	assert.False(t, ok)
	assert.Equal(t, "auth_date=1700000000", host.InitData())

	_, ok = LiveHost{}.Resolve(ports.Page{Host: host})
	assert.False(t, ok)
}
