package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/aggregator"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/logger"
	"github.com/spigell/jobhound/internal/utils"
)

const (
	PromptDetails             = "Show details of a listing"
	PromptReportBySource      = "Report by source"
	PromptListingsToFile      = "Dump listings to file"
	PromptAppendToExcludeFile = "Append all listings to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every enabled job board and rank the results",
	Run: func(cmd *cobra.Command, args []string) {
		search(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("location", "l", "", "location to search in")
	searchCmd.Flags().IntP("limit", "n", 0, "maximum number of listings (default is aggregator.default-limit)")
	searchCmd.Flags().StringP("skills", "s", "", "comma-separated skills used for ranking")
	searchCmd.Flags().StringP("title", "t", "", "desired job title used for ranking")
	searchCmd.Flags().StringP("exclude-file", "e", "", "special file with listings to exclude. Default is unset.")
	searchCmd.Flags().BoolP("yes", "y", false, "do not show the interactive menu")
	searchCmd.Flags().Bool("dump", false, "dump the listings to a temporary file")
	searchCmd.Flags().Bool("ai-review", false, "review top listings with the AI provider")
	searchCmd.Flags().Bool("no-filters", false, "skip every post-rank filter")

	viper.BindPFlag("search.location", searchCmd.Flags().Lookup("location"))
	viper.BindPFlag("search.limit", searchCmd.Flags().Lookup("limit"))
	viper.BindPFlag("profile.skills", searchCmd.Flags().Lookup("skills"))
	viper.BindPFlag("profile.desired-title", searchCmd.Flags().Lookup("title"))
	viper.BindPFlag("filters.exclude-file", searchCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("ai.enabled", searchCmd.Flags().Lookup("ai-review"))
}

func search(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	app := newApplication(ctx)
	logger := app.logger

	query := app.config.Search
	if len(args) > 0 {
		query.Query = strings.Join(args, " ")
	}

	logger.Info("starting the jobhound", zap.String("version", version))

	noFilters, _ := cmd.Flags().GetBool("no-filters")
	res, err := app.pipeline.Run(ctx, query, app.config.Profile, filterSteps(noFilters))
	if err != nil {
		if errors.Is(err, listing.ErrInvalidQuery) {
			logger.Fatal("invalid query", zap.Error(err), zap.String("hint", "pass the query as an argument or set search.query"))
		}
		logger.Fatal("searching listings", zap.Error(err))
	}

	reportSources(logger, res.Sources)
	listings := res.Listings

	if viper.GetBool("json") {
		items := listings.Items
		if items == nil {
			items = []listing.Record{}
		}
		if err := printJSON(items); err != nil {
			logger.Fatal("printing listings", zap.Error(err))
		}
	} else {
		printListings(logger, listings)
	}

	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		if err := dumpListings(logger, listings); err != nil {
			logger.Fatal("dumping listings", zap.Error(err))
		}
	}

	if listings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no listings found"))
		return
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes || viper.GetBool("json") {
		return
	}

	for {
		items := []string{PromptDetails, PromptReportBySource, PromptListingsToFile}
		if app.config.Filters.ExcludeFile != "" {
			items = append(items, PromptAppendToExcludeFile)
		}

		prompt := promptui.Select{
			Label: "What next?",
			Items: append(items, PromptExit),
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, app, listings); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, app *application, listings *listing.Listings) error {
	logger := app.logger

	switch action {
	case PromptDetails:
		return showDetails(ctx, app, listings)
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(listings.ReportBySource(), "", "  ")
		logger.Info(string(pretty), zap.Int("listings count", listings.Len()))
		return nil
	case PromptListingsToFile:
		return dumpListings(logger, listings)
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, app.config.Filters.ExcludeFile, listings)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(ctx context.Context, app *application, listings *listing.Listings) error {
	items := make([]string, 0, listings.Len()+1)
	for i, rec := range listings.Items {
		items = append(items, fmt.Sprintf("%d. %s / %s / %s", i+1, rec.Title, rec.Company, rec.SourceName))
	}

	listingPrompt := promptui.Select{
		Label: "Choose a listing and press ENTER",
		Items: append(items, PromptBack),
		Size:  10,
	}

	idx, selected, err := listingPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	rec := listings.Items[idx]
	d, err := app.fetcher.Fetch(ctx, rec.ListingURL)
	if err != nil {
		app.logger.Warn("details are not available", zap.String("url", rec.ListingURL), zap.Error(err))
		return nil
	}

	app.logger.Info(d.Description,
		zap.String("title", rec.Title),
		zap.String("company", rec.Company),
		zap.String("apply url", d.ApplyURL),
	)
	return nil
}

func appendToExcludeFile(logger *zap.Logger, excludeFile string, listings *listing.Listings) error {
	seen, err := listing.LoadSeenListings(excludeFile)
	if err != nil {
		return err
	}

	seen.Append(listings.ToSeen(time.Now()))

	if err := seen.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", listings.Len()))
	return nil
}

func dumpListings(logger *zap.Logger, listings *listing.Listings) error {
	filename, err := listings.DumpToTmpFile()
	if err != nil {
		return fmt.Errorf("dump results to file: %w", err)
	}
	logger.Info("dumping result to file", zap.String("filename", filename))
	return nil
}

func reportSources(l *zap.Logger, results []aggregator.SourceResult) {
	for _, r := range results {
		fields := []zap.Field{
			zap.String("source", r.Source),
			zap.Int("count", len(r.Records)),
			zap.Duration("elapsed", r.Elapsed),
		}
		if !r.OK() {
			fields = append(fields, zap.String("error", utils.TruncateForLog(r.Err.Error(), 200)))
		}
		l.Info("source result", fields...)
	}
}

func printListings(l *zap.Logger, listings *listing.Listings) {
	for _, rec := range listings.Items {
		l.Info(rec.ListingURL, logger.RecordFields(rec)...)
	}
	l.Info("current list of listings", zap.Int("count", listings.Len()))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
