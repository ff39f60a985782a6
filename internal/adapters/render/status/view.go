package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Snapshot is what the terminal view shows about one page load: the resolved
// identity and whatever session is currently persisted.
type Snapshot struct {
	Resolution domain.Resolution
	Session    domain.SessionRecord
	HasSession bool
	State      domain.LifecycleState
}

type RenderOptions struct {
	Now time.Time
	// ShowState adds the lifecycle state line; only meaningful inside `mt run`.
	ShowState bool
}

func renderView(snapshot Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Mini-App Telemetry"),
		s.header.Render(fmt.Sprintf("identity source: %s", sourceLabel(snapshot.Resolution.Source))),
		s.section.Render(renderIdentity(snapshot.Resolution, s)),
		s.section.Render(renderSession(snapshot, opts, s)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderIdentity(res domain.Resolution, s styles) string {
	if !res.Available() {
		return s.warning.Render("Identity unavailable; sessions are reported without a user id.")
	}

	parts := []string{s.user.Render(userTitle(res.Identity))}
	if res.StartParam != "" {
		parts = append(parts, keyValue("start param:", res.StartParam, s))
	}
	if res.Signature != "" {
		parts = append(parts, keyValue("signature:", "present", s))
	}
	if res.InitData != "" {
		parts = append(parts, keyValue("init data:", fmt.Sprintf("%d bytes", len(res.InitData)), s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderSession(snapshot Snapshot, opts RenderOptions, s styles) string {
	parts := make([]string, 0, 3)
	if opts.ShowState {
		parts = append(parts, stateLine(snapshot.State, s))
	}

	if !snapshot.HasSession || snapshot.Session.Empty() {
		parts = append(parts, s.empty.Render("No stored session."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts, keyValue("session:", snapshot.Session.ID, s))
	parts = append(parts, keyValue("started:", formatStarted(snapshot.Session.StartedAt, opts.Now), s))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func stateLine(state domain.LifecycleState, s styles) string {
	style := s.idle
	if state == domain.StateStarted {
		style = s.started
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render("state:"), " ", style.Render(state.String()))
}

func keyValue(key, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key), " ", s.detail.Render(value))
}

func userTitle(identity domain.IdentityContext) string {
	title := fmt.Sprintf("User %s", identity.UserID)
	if handle := strings.TrimSpace(identity.Username); handle != "" {
		title += " @" + handle
	}

	name := strings.TrimSpace(strings.Join([]string{identity.FirstName, identity.LastName}, " "))
	if name != "" {
		title += fmt.Sprintf(" (%s)", name)
	}

	return title
}

func sourceLabel(source domain.IdentitySource) string {
	switch source {
	case domain.SourceQueryParams:
		return "query parameters"
	case domain.SourceLiveHost:
		return "host sdk"
	case domain.SourceEmbeddedBlob:
		return "embedded init data"
	default:
		return "none"
	}
}

func formatStarted(startedAt, now time.Time) string {
	if startedAt.IsZero() {
		return "unknown"
	}

	stamp := startedAt.UTC().Format("15:04:05 on 02 Jan")
	if now.IsZero() || startedAt.After(now) {
		return stamp
	}

	age := now.Sub(startedAt)
	if age < time.Minute {
		return stamp + " (just now)"
	}

	return fmt.Sprintf("%s (%s ago)", stamp, formatAge(age))
}

func formatAge(age time.Duration) string {
	switch {
	case age < time.Hour:
		return plural(int(math.Floor(age.Minutes())), "minute")
	case age < 24*time.Hour:
		return plural(int(math.Floor(age.Hours())), "hour")
	default:
		return plural(int(math.Floor(age.Hours()/24)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
