package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var detailCmd = &cobra.Command{
	Use:   "detail <url>",
	Short: "Fetch the full description and apply link of a single listing",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()

		app := newApplication(ctx)

		d, err := app.fetcher.Fetch(ctx, args[0])
		if err != nil {
			app.logger.Fatal("fetching details", zap.String("url", args[0]), zap.Error(err))
		}

		if viper.GetBool("json") {
			if err := printJSON(d); err != nil {
				app.logger.Fatal("printing details", zap.Error(err))
			}
			return
		}

		app.logger.Info(d.Description, zap.String("apply url", d.ApplyURL))
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
}
