package domain

import "errors"

var (
	ErrIdentityUnavailable = errors.New("player identity unavailable")
	ErrAlreadyStarted      = errors.New("session start already attempted")
	ErrKeyNotFound         = errors.New("key not found")
	ErrMissingSessionID    = errors.New("start session response missing session id")
)
