// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/exceleasy/pkg/configs"
)

var (
	// configPath 配置文件或所在目录.
	configPath string
	// debug 输出更多调试信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:           "exceleasy",
		Short:         "Spreadsheet ingestion and history service",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       configs.AppVersion,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print debug output")

	registerServeCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerBackendsCommands()
	registerEventsCommands()
}

// loadConfig 为需要配置的子命令加载配置.
func loadConfig(*cobra.Command, []string) error {
	return configs.InitConfig(configPath)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
