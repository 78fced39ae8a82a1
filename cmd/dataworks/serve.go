package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qiangli/dataworks/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(getConfig())
		if err != nil {
			return err
		}
		defer app.Close()

		var runs server.RunLister
		if app.History != nil {
			runs = app.History
		}
		srv := server.New(app.Dispatcher, app.FS, runs)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx, viper.GetString("address"))
	},
}

func init() {
	serveCmd.Flags().String("address", ":8000", "Service host:port")
	viper.BindPFlag("address", serveCmd.Flags().Lookup("address"))
}
