package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/spf13/cobra"
)

func newRegisterCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the resolved player with the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lifecycle, err := app.newLifecycle()
			if err != nil {
				return err
			}

			var result domain.RegisterResult
			err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), "Registering player...", app.backend.Fetcher.Budget(), asJSON, func(ctx context.Context) error {
				var callErr error
				result, callErr = lifecycle.RegisterPlayer(ctx)
				return callErr
			})
			if err != nil {
				return err
			}

			userID := lifecycle.Resolution().Identity.UserID
			if asJSON {
				response := json.RawMessage("null")
				if json.Valid([]byte(result.Raw)) {
					response = json.RawMessage(result.Raw)
				}
				return writeJSON(cmd, struct {
					TelegramID int64           `json:"telegram_id"`
					Response   json.RawMessage `json:"response"`
				}{TelegramID: int64(userID), Response: response})
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "registered player %s\n", userID)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
