package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/APB2021/student_manager/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCommand(ctx context.Context, configFilePath string, setupErr error) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:			serve,
		Short:			fmt.Sprintf("%s a read-only http view of the %s data", serve, studentManager),
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
			srv := server.InitServer(&server.Config{Port: viper.GetInt(flagServerPort)}, st)
			serverErr := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- err
				}
				close(serverErr)
			}()
			logger.Infof("server is running on %s", srv.Addr)
			select {
			case err := <-serverErr:
				return err
			case <-ctx.Done():
			}
			logger.Info("stopping server...")
			shutdownCtx, timeout := context.WithTimeout(context.Background(), time.Minute)
			defer timeout()
			return srv.Shutdown(shutdownCtx)
		},
	}
	serveCmd.Flags().Int(flagServerPort, viper.GetInt(flagServerPort), "port the http view should listen on")
	addCommonFlags(serveCmd)
	return serveCmd
}
