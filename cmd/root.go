package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCmd(ctx context.Context, args []string) *cobra.Command {
	// register to env variables before the config is read, so they override the config file
	viper.SetEnvPrefix(students)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	configFilePath, setupErr := loadConfig(args)
	// create a root student manager CLI command and register sub commands
	rootCmd := &cobra.Command{
		Use:			studentManager,
		Short:			studentManager,
		SilenceUsage:	true,
		SilenceErrors:	true,
	}
	rootCmd.AddCommand(
		newStartCommand(ctx, configFilePath, setupErr),
		newServeCommand(ctx, configFilePath, setupErr),
		newExportCommand(ctx, configFilePath, setupErr),
		newImportCommand(ctx, configFilePath, setupErr),
	)
	return rootCmd
}
