package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const pageURLEnv = "MT_PAGE_URL"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mt",
		Short:         "Mini-app telemetry (mt): register players and report game sessions",
		Long:          "mt resolves a chat mini-app player's identity from a page URL, registers the player with the game backend, and reports session start and end events with persisted session state.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentFlags().StringVar(&app.page.url, "url", os.Getenv(pageURLEnv), "Page URL carrying launch parameters (env "+pageURLEnv+")")
	rootCmd.PersistentFlags().StringVar(&app.page.initData, "init-data", "", "Raw host init data, treated as the live host SDK")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newIdentityCmd(app),
		newRegisterCmd(app),
		newSessionCmd(app),
		newRunCmd(app),
	)

	return rootCmd
}
