package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sg",
		Short:         "session-guard (sg): manage the host ban list and enforcement settings",
		Long:          "sg (session-guard) edits the ban list shared with the in-session guard, changes the enforcement strategy, and replays a simulated session against the current configuration.",
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

	rootCmd.AddCommand(
		newVersionCmd(),
		newBanListCmd(app),
		newConfigCmd(app),
		newSimulateCmd(app),
	)

	return rootCmd
}
