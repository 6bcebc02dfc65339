package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/APB2021/student_manager/console"
	"github.com/APB2021/student_manager/records"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStartCommand(ctx context.Context, configFilePath string, setupErr error) *cobra.Command {
	startCmd := &cobra.Command{
		Use:			start,
		Short:			fmt.Sprintf("%s the interactive %s menu", start, studentManager),
		SilenceUsage:	true,
		SilenceErrors:	true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(cmd, setupErr); err != nil {
				return err
			}
			st, err := openStore(ctx, configFilePath)
			if err != nil {
				return err
			}
			defer closeStore(st)
			view := console.New(st, records.New(st, viper.GetString(flagExportDir)), os.Stdin, os.Stdout)
			if err := view.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	addCommonFlags(startCmd)
	return startCmd
}
