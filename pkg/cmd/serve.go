package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/ingestvault/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the ingestvault HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.NewApp(configPath)

		return a.Run()
	},
}

// registerServeCommands 注册 serve 子命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
