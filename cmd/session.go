package cmd

import (
	"context"
	"errors"
	"fmt"

	statusadapter "github.com/bnema/miniapp-telemetry/internal/adapters/render/status"
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/spf13/cobra"
)

var errEndNotDelivered = errors.New("end session not delivered")

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start, end or inspect the persisted game session",
	}

	cmd.AddCommand(newSessionStartCmd(app), newSessionEndCmd(app), newSessionShowCmd(app))
	return cmd
}

func newSessionStartCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Report a session start and persist the returned session id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lifecycle, err := app.newLifecycle()
			if err != nil {
				return err
			}

			var record domain.SessionRecord
			err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), "Starting session...", app.backend.Fetcher.Budget(), asJSON, func(ctx context.Context) error {
				var callErr error
				record, callErr = lifecycle.StartSession(ctx)
				return callErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, newSessionJSON(record, true))
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "session %s started at %s\n", record.ID, domain.FormatTimestamp(record.StartedAt))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSessionEndCmd(app *app) *cobra.Command {
	var reason string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "end",
		Short: "Report a session end and clear the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lifecycle, err := app.newLifecycle()
			if err != nil {
				return err
			}

			var result domain.EndResult
			err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), "Ending session...", app.backend.Fetcher.Budget(), asJSON, func(ctx context.Context) error {
				result = lifecycle.End(ctx, domain.EndExternal, reason)
				return nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else if err := writeEndResult(cmd, result); err != nil {
				return err
			}

			if !result.Delivered {
				return fmt.Errorf("%w: %s", errEndNotDelivered, result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "End reason sent to the backend (default: external)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSessionShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the persisted session without contacting the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			record, ok := app.sessions.Load(cmd.Context())
			if asJSON {
				return writeJSON(cmd, newSessionJSON(record, ok))
			}

			resolution, err := app.resolve()
			if err != nil {
				return err
			}

			return writeSnapshot(cmd, app, statusadapter.Snapshot{
				Resolution: resolution,
				Session:    record,
				HasSession: ok,
			}, false)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeEndResult(cmd *cobra.Command, result domain.EndResult) error {
	id := result.SessionID
	if !result.HadSession {
		id = "(none)"
	}

	if !result.Delivered {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "session %s cleared; end not delivered: %s\n", id, result.Error)
		return err
	}

	status := result.Status
	if status == "" {
		status = "ok"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "session %s ended (%s)\n", id, status)
	return err
}
