package domain

import "time"

// DeviceHints are raw client diagnostics forwarded as request headers.
type DeviceHints struct {
	UserAgent string
	Language  string
	Screen    string
}

type RegisterRequest struct {
	Identity IdentityContext
}

type RegisterResult struct {
	Raw string
}

type StartRequest struct {
	UserID     UserID
	StartedAt  time.Time
	StartParam string
}

type StartResult struct {
	SessionID string
}

type EndRequest struct {
	// SessionID is empty when no session was stored; it is sent as null.
	SessionID string
	UserID    UserID
	EndedAt   time.Time
	Reason    string
}

type EndResponse struct {
	Status string
}
