package identity

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bnema/miniapp-telemetry/internal/domain"
)

var (
	userIDParams     = []string{"telegram_id", "tg_id", "user_id"}
	startParamParams = []string{"tgWebAppStartParam", "start_param"}
	signatureParams  = []string{"signature", "sign", "hash"}
	blobParams       = []string{"tgWebAppData", "init_data"}
)

const (
	usernameParam  = "username"
	firstNameParam = "first_name"
	lastNameParam  = "last_name"
	blobUserKey    = "user"
)

func firstValue(values url.Values, keys []string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(values.Get(key)); value != "" {
			return value
		}
	}
	return ""
}

func parseUserID(raw string) (domain.UserID, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return domain.UserID(id), true
}

// firstUserID returns the first recognized id parameter that parses.
func firstUserID(values url.Values) (domain.UserID, bool) {
	for _, key := range userIDParams {
		if id, ok := parseUserID(values.Get(key)); ok {
			return id, true
		}
	}
	return 0, false
}

// pageValues merges query and fragment parameters; chat hosts put launch
// data in the fragment. Query values win.
func pageValues(u *url.URL) url.Values {
	values := url.Values{}
	if u == nil {
		return values
	}

	if fragment, err := url.ParseQuery(u.EscapedFragment()); err == nil {
		for key, v := range fragment {
			values[key] = v
		}
	}
	for key, v := range u.Query() {
		values[key] = v
	}
	return values
}
