package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose search, detail and rank over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := newApplication(ctx)
		handler := api.NewHandler(app.pipeline, app.fetcher, app.matcher, app.logger)

		if err := api.Serve(ctx, app.config.Serve.Addr, handler); err != nil {
			app.logger.Fatal("serving http api", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default is serve.addr)")
	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
}
