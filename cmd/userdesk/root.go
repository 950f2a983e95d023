package main

import (
	"os"

	"github.com/open-sspm/userdesk/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "userdesk",
	Short:         "userdesk is a small admin UI for a hosted user directory.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		execCtx := commandExecutionContext{
			CommandPath:       cmd.CommandPath(),
			UsesStructuredLog: commandUsesStructuredLogging(cmd),
		}
		setCommandExecutionContext(execCtx)
		if !execCtx.UsesStructuredLog {
			return nil
		}
		_, err := logging.BootstrapFromEnv(logging.BootstrapOptions{
			Command: execCtx.CommandPath,
			Writer:  os.Stdout,
		})
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, loginCmd, usersCmd)
}
