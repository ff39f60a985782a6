package domain

import "strconv"

type UserID int64

func (id UserID) Valid() bool {
	return id > 0
}

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type IdentityContext struct {
	UserID    UserID `json:"user_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// IdentitySource tags which provider produced a Resolution.
type IdentitySource string

const (
	SourceQueryParams  IdentitySource = "query_params"
	SourceLiveHost     IdentitySource = "live_host"
	SourceEmbeddedBlob IdentitySource = "embedded_blob"
	SourceUnavailable  IdentitySource = "unavailable"
)

type Resolution struct {
	Source   IdentitySource  `json:"source"`
	Identity IdentityContext `json:"identity"`
	// StartParam is the launch parameter the host passed to the mini-app, if any.
	StartParam string `json:"start_param,omitempty"`
	// InitData and Signature are forwarded verbatim; they are never verified here.
	InitData  string `json:"init_data,omitempty"`
	Signature string `json:"signature,omitempty"`
}

func UnavailableResolution() Resolution {
	return Resolution{Source: SourceUnavailable}
}

func (r Resolution) Available() bool {
	return r.Source != SourceUnavailable && r.Source != "" && r.Identity.UserID.Valid()
}
