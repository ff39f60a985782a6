package cmd

import (
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/miniapp-telemetry/internal/adapters/render/status"
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/spf13/cobra"
)

type sessionJSON struct {
	Stored    bool    `json:"stored"`
	SessionID *string `json:"session_id"`
	StartedAt *string `json:"started_at"`
}

func newSessionJSON(record domain.SessionRecord, ok bool) sessionJSON {
	out := sessionJSON{Stored: ok}
	if !ok {
		return out
	}

	out.SessionID = &record.ID
	if !record.StartedAt.IsZero() {
		stamp := domain.FormatTimestamp(record.StartedAt)
		out.StartedAt = &stamp
	}
	return out
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSnapshot(cmd *cobra.Command, app *app, snapshot statusadapter.Snapshot, showState bool) error {
	rendered, err := app.statusRenderer(snapshot, statusadapter.RenderOptions{
		Now:       app.clock.Now(),
		ShowState: showState,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
