package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/storage"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "record store maintenance",
	}

	dbMigrateCmd = &cobra.Command{
		Use:     "migrate",
		Short:   "create or update the record store schema and indexes",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configs.GetConfig()

			manager, err := storage.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer manager.Close(ctx) //nolint:errcheck

			if err := manager.Store().Migrate(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", cfg.Store.Backend)

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbMigrateCmd)
}
