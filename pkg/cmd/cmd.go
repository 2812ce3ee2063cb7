// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// configPath 配置文件搜索路径，空值时按默认顺序查找.
	configPath string
	// debug 控制部分子命令输出更详细的信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "ingestvault",
		Short: "A service tracking data ingestion into object groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file search path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose command output")

	registerServeCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
