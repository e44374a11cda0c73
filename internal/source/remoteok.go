package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/utils"
)

const RemoteOKName = "RemoteOK"

const remoteOKPath = "/api"

type RemoteOK struct {
	base
}

type remoteOKJob struct {
	ID          string   `mapstructure:"id"`
	Slug        string   `mapstructure:"slug"`
	Date        string   `mapstructure:"date"`
	Company     string   `mapstructure:"company"`
	Position    string   `mapstructure:"position"`
	Tags        []string `mapstructure:"tags"`
	Description string   `mapstructure:"description"`
	Location    string   `mapstructure:"location"`
	SalaryMin   int      `mapstructure:"salary_min"`
	SalaryMax   int      `mapstructure:"salary_max"`
	ApplyURL    string   `mapstructure:"apply_url"`
	URL         string   `mapstructure:"url"`
}

func NewRemoteOK(cfg Config, client *http.Client, logger *zap.Logger) *RemoteOK {
	return &RemoteOK{base: newBase(RemoteOKName, cfg, client, logger)}
}

// Search ignores the location: every listing on the board is remote.
func (a *RemoteOK) Search(ctx context.Context, query listing.SearchQuery) ([]listing.Record, error) {
	params := url.Values{}
	params.Set("tags", strings.ToLower(strings.TrimSpace(query.Query)))

	body, err := a.fetch(ctx, a.searchURL(remoteOKPath, params), "application/json")
	if err != nil {
		return nil, err
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", listing.ErrParseMismatch, err)
	}

	records := make([]listing.Record, 0, a.cfg.MaxResults)
	for i, item := range items {
		// The first element is a legal notice, not a job.
		if _, ok := item["position"]; !ok {
			continue
		}

		job, err := decodeRemoteOKJob(item)
		if err != nil {
			a.logger.Debug("skip listing element", zap.Int("index", i), zap.Error(err))
			continue
		}

		records = a.accept(records, i, a.toRecord(job))
		if len(records) >= a.cfg.MaxResults {
			break
		}
	}

	return records, nil
}

func decodeRemoteOKJob(item map[string]interface{}) (remoteOKJob, error) {
	var job remoteOKJob
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &job,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return job, err
	}
	if err := decoder.Decode(item); err != nil {
		return job, fmt.Errorf("%w: %v", listing.ErrParseMismatch, err)
	}
	return job, nil
}

func (a *RemoteOK) toRecord(job remoteOKJob) listing.Record {
	listingURL := job.URL
	if listingURL == "" && job.ID != "" {
		listingURL = "/remote-jobs/" + job.ID
	}
	if resolved, err := listing.ResolveURL(a.cfg.BaseURL, listingURL); err == nil {
		listingURL = resolved
	}

	applyURL := ""
	if job.ApplyURL != "" {
		if resolved, err := listing.ResolveURL(a.cfg.BaseURL, job.ApplyURL); err == nil {
			applyURL = resolved
		}
	}

	location := job.Location
	if location == "" {
		location = listing.EmploymentRemote
	}

	return listing.Record{
		Title:          job.Position,
		Company:        job.Company,
		Location:       location,
		Description:    htmlToText(job.Description),
		Salary:         formatSalaryRange(job.SalaryMin, job.SalaryMax),
		ListingURL:     listingURL,
		ApplyURL:       applyURL,
		PostedDate:     job.Date,
		EmploymentType: listing.EmploymentRemote,
	}
}

// htmlToText strips markup from an HTML fragment.
func htmlToText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return utils.CollapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return utils.CollapseSpace(fragment)
	}
	return utils.CollapseSpace(doc.Text())
}

func formatSalaryRange(from, to int) string {
	switch {
	case from > 0 && to > 0:
		return fmt.Sprintf("$%d - $%d", from, to)
	case from > 0:
		return fmt.Sprintf("from $%d", from)
	case to > 0:
		return fmt.Sprintf("up to $%d", to)
	default:
		return ""
	}
}
