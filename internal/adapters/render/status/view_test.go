package status

import (
	"testing"
	"time"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResolvedIdentityWithSession(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render(Snapshot{
		Resolution: domain.Resolution{
			Source: domain.SourceQueryParams,
			Identity: domain.IdentityContext{
				UserID:    42,
				Username:  "alice",
				FirstName: "Alice",
				LastName:  "Liddell",
			},
			StartParam: "promo",
			Signature:  "abc",
		},
		Session:    domain.SessionRecord{ID: "sess-1", StartedAt: now.Add(-3 * time.Hour)},
		HasSession: true,
		State:      domain.StateStarted,
	}, RenderOptions{Now: now, ShowState: true})

	require.NoError(t, err)
	assert.Contains(t, output, "identity source: query parameters")
	assert.Contains(t, output, "User 42 @alice (Alice Liddell)")
	assert.Contains(t, output, "start param: promo")
	assert.Contains(t, output, "signature: present")
	assert.Contains(t, output, "state: started")
	assert.Contains(t, output, "session: sess-1")
	assert.Contains(t, output, "started: 08:00:00 on 14 Feb (3 hours ago)")
}

func TestRenderUnavailableIdentity(t *testing.T) {
	output, err := Render(Snapshot{Resolution: domain.UnavailableResolution()}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "identity source: none")
	assert.Contains(t, output, "Identity unavailable")
	assert.Contains(t, output, "No stored session.")
	assert.NotContains(t, output, "state:")
}

func TestRenderSessionAge(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		started time.Time
		want    string
	}{
		{name: "seconds", started: now.Add(-20 * time.Second), want: "(just now)"},
		{name: "one minute", started: now.Add(-time.Minute), want: "(1 minute ago)"},
		{name: "minutes", started: now.Add(-42 * time.Minute), want: "(42 minutes ago)"},
		{name: "days", started: now.Add(-50 * time.Hour), want: "(2 days ago)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := Render(Snapshot{
				Resolution: domain.Resolution{Source: domain.SourceLiveHost, Identity: domain.IdentityContext{UserID: 7}},
				Session:    domain.SessionRecord{ID: "s", StartedAt: tt.started},
				HasSession: true,
			}, RenderOptions{Now: now})

			require.NoError(t, err)
			assert.Contains(t, output, tt.want)
			assert.Contains(t, output, "identity source: host sdk")
		})
	}
}

func TestRenderSessionWithUnknownStartTime(t *testing.T) {
	output, err := Render(Snapshot{
		Resolution: domain.Resolution{Source: domain.SourceEmbeddedBlob, Identity: domain.IdentityContext{UserID: 7}, InitData: "user=x"},
		Session:    domain.SessionRecord{ID: "s"},
		HasSession: true,
		State:      domain.StateNotStarted,
	}, RenderOptions{ShowState: true})

	require.NoError(t, err)
	assert.Contains(t, output, "started: unknown")
	assert.Contains(t, output, "state: not_started")
	assert.Contains(t, output, "init data: 6 bytes")
	assert.Contains(t, output, "identity source: embedded init data")
}
