package main

import "github.com/spf13/cobra"

var ephemeral bool

var rootCmd = &cobra.Command{
	Use:           "hospital",
	Short:         "Terminal client for the smart hospital cleaning service.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the session token in memory for this process only")
	rootCmd.AddCommand(runCmd, statusCmd, loginCmd, logoutCmd, registerCmd, serveDevCmd)
}
