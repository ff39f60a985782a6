package httpapi

import "fmt"

// Contract selects the request-body shape of the start call. The backend has
// shipped both; which one applies is a deployment setting.
type Contract string

const (
	ContractTimestamp   Contract = "timestamp"
	ContractIdempotency Contract = "idempotency"
)

func ParseContract(raw string) (Contract, error) {
	switch Contract(raw) {
	case "", ContractTimestamp:
		return ContractTimestamp, nil
	case ContractIdempotency:
		return ContractIdempotency, nil
	default:
		return "", fmt.Errorf("unknown backend contract %q", raw)
	}
}

type API struct {
	BaseURL      string
	RegisterPath string
	StartPath    string
	EndPath      string
}

const (
	DefaultRegisterPath = "/api/players/register"
	DefaultStartPath    = "/api/sessions/start"
	DefaultEndPath      = "/api/sessions/end"
)

// Diagnostics are forwarded verbatim for server-side checks.
type Diagnostics struct {
	UserAgent string
	Language  string
	Screen    string
	InitData  string
	Signature string
}

const (
	headerUserAgent = "X-Client-User-Agent"
	headerLanguage  = "X-Client-Language"
	headerScreen    = "X-Client-Screen"
	headerInitData  = "X-Init-Data"
	headerSignature = "X-Init-Signature"
)
