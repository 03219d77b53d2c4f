package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/exceleasy/pkg/configs"
)

// reveal 打印配置时保留口令与密钥.
var reveal bool

var (
	configCmd = &cobra.Command{
		Use:               "config",
		Short:             "inspect the effective configuration",
		PersistentPreRunE: loadConfig,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file in use",
		Run: func(cmd *cobra.Command, args []string) {
			used := configs.GetViper().ConfigFileUsed()
			if used == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(defaults and environment only)")
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), used)
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the merged configuration as JSON, secrets masked",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *configs.GetConfig()
			if !reveal {
				cfg = cfg.Redacted()
			}

			if debug {
				configs.GetViper().Debug()
			}

			b, err := sonic.ConfigStd.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// registerConfigsCommands 注册 config 子命令.
func registerConfigsCommands() {
	configShowCmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets in clear text")

	configCmd.AddCommand(configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
