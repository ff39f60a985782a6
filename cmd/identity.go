package cmd

import (
	statusadapter "github.com/bnema/miniapp-telemetry/internal/adapters/render/status"
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/spf13/cobra"
)

func newIdentityCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Show which player the page URL resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolution, err := app.resolve()
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, struct {
					Source     string                  `json:"source"`
					Available  bool                    `json:"available"`
					Identity   *domain.IdentityContext `json:"identity,omitempty"`
					StartParam string                  `json:"start_param,omitempty"`
					Signature  string                  `json:"signature,omitempty"`
				}{
					Source:     string(resolution.Source),
					Available:  resolution.Available(),
					Identity:   identityOrNil(resolution),
					StartParam: resolution.StartParam,
					Signature:  resolution.Signature,
				})
			}

			record, ok := app.sessions.Load(cmd.Context())
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

func identityOrNil(resolution domain.Resolution) *domain.IdentityContext {
	if !resolution.Available() {
		return nil
	}
	identity := resolution.Identity
	return &identity
}
