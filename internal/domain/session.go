package domain

import "time"

type SessionRecord struct {
	ID        string
	StartedAt time.Time
}

func (r SessionRecord) Empty() bool {
	return r.ID == ""
}

type LifecycleState int32

const (
	StateNotStarted LifecycleState = iota
	StateStarted
)

func (s LifecycleState) String() string {
	switch s {
	case StateStarted:
		return "started"
	default:
		return "not_started"
	}
}

type StartTrigger string

const (
	TriggerInit        StartTrigger = "init"
	TriggerPointerDown StartTrigger = "pointerdown"
	TriggerKeyDown     StartTrigger = "keydown"
	TriggerTouchStart  StartTrigger = "touchstart"
	TriggerExternal    StartTrigger = "external"
)

type EndTrigger string

const (
	EndVisibilityHidden EndTrigger = "visibility_hidden"
	EndUnload           EndTrigger = "unload"
	EndExternal         EndTrigger = "external"
)

type EndResult struct {
	Trigger    EndTrigger `json:"trigger"`
	SessionID  string     `json:"session_id,omitempty"`
	HadSession bool       `json:"had_session"`
	Delivered  bool       `json:"delivered"`
	Status     string     `json:"status,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// timestampLayout matches the millisecond ISO-8601 form browsers emit.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func ParseTimestamp(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
