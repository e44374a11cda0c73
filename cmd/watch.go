package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch [query]",
	Short: "Repeat the configured search on a schedule and log new listings",
	Run: func(_ *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := newApplication(ctx)

		query := app.config.Search
		if len(args) > 0 {
			query.Query = strings.Join(args, " ")
		}

		s, err := scheduler.New(app.pipeline, app.config.Watch, query, app.config.Profile, app.logger)
		if err != nil {
			app.logger.Fatal("creating scheduler", zap.Error(err))
		}

		if err := s.Run(ctx); err != nil {
			app.logger.Fatal("running scheduler", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("schedule", "", "cron schedule, e.g. \"@every 30m\" or \"0 9 * * 1-5\" (default is watch.schedule)")
	viper.BindPFlag("watch.schedule", watchCmd.Flags().Lookup("schedule"))
}
