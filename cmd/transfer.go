package cmd

import (
	"context"
	"fmt"

	"github.com/APB2021/student_manager/records"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// existing files are only overwritten when --force is given
func forceConfirmation(force bool) records.ConfirmFunc {
	return func(path string) bool {
		if !force {
			logger.Warnf("%s exists, use --%s to overwrite it", path, flagForce)
		}
		return force
	}
}

func newExportCommand(ctx context.Context, configFilePath string, setupErr error) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:			export,
		Short:			fmt.Sprintf("%s students and groups to the export dir [%s, %s, %s]", export, text, xml, group),
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
			rec := records.New(st, viper.GetString(flagExportDir))
			confirm := forceConfirmation(viper.GetBool(flagForce))
			switch format := viper.GetString(flagFormat); format {
			case text:
				_, err = rec.ExportText(ctx, confirm)
			case xml:
				_, err = rec.ExportXML(ctx)
			case group:
				_, err = rec.ExportGroupXML(ctx, viper.GetString(flagGroup), confirm)
			default:
				err = fmt.Errorf("unknown format \"%s\"", format)
			}
			return err
		},
	}
	exportCmd.Flags().String(flagFormat, text, fmt.Sprintf("export format [%s, %s, %s]", text, xml, group))
	exportCmd.Flags().String(flagGroup, "", fmt.Sprintf("name of the group to export with --%s %s", flagFormat, group))
	exportCmd.Flags().Bool(flagForce, false, "overwrite existing files")
	addCommonFlags(exportCmd)
	return exportCmd
}

func newImportCommand(ctx context.Context, configFilePath string, setupErr error) *cobra.Command {
	importCommand := &cobra.Command{
		Use:			importCmd,
		Short:			fmt.Sprintf("%s students and groups from the export dir [%s, %s]", importCmd, text, xml),
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
			rec := records.New(st, viper.GetString(flagExportDir))
			var result *records.Result
			switch format := viper.GetString(flagFormat); format {
			case text:
				result, err = rec.ImportText(ctx)
			case xml:
				result, err = rec.ImportXML(ctx)
			default:
				err = fmt.Errorf("unknown format \"%s\"", format)
			}
			if result != nil {
				logger.Infof("%d students imported, %d skipped", result.Inserted, result.Skipped)
			}
			return err
		},
	}
	importCommand.Flags().String(flagFormat, text, fmt.Sprintf("import format [%s, %s]", text, xml))
	addCommonFlags(importCommand)
	return importCommand
}
