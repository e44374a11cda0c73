package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

const IndeedName = "Indeed"

const (
	indeedPath       = "/jobs"
	indeedContainers = "div.job_seen_beacon, div.jobsearch-SerpJobCard"
)

type Indeed struct {
	base
}

func NewIndeed(cfg Config, client *http.Client, logger *zap.Logger) *Indeed {
	return &Indeed{base: newBase(IndeedName, cfg, client, logger)}
}

func (a *Indeed) Search(ctx context.Context, query listing.SearchQuery) ([]listing.Record, error) {
	params := url.Values{}
	params.Set("q", query.Query)
	if query.HasLocation() {
		params.Set("l", query.Location)
	}

	doc, err := a.fetchDocument(ctx, a.searchURL(indeedPath, params))
	if err != nil {
		return nil, err
	}

	return a.collect(doc, indeedContainers, a.extract)
}

func (a *Indeed) extract(s *goquery.Selection) (listing.Record, error) {
	href, err := a.link(s, "h2.jobTitle a, a.jcs-JobTitle")
	if err != nil {
		return listing.Record{}, err
	}

	title := attr(s, "h2.jobTitle span[title]", "title")
	if title == "" {
		title = text(s, "h2.jobTitle, a.jcs-JobTitle")
	}

	location := text(s, `[data-testid="text-location"], .companyLocation`)

	return listing.Record{
		Title:          title,
		Company:        text(s, `[data-testid="company-name"], .companyName`),
		Location:       location,
		Description:    text(s, "div.job-snippet, [data-testid=\"jobsnippet_footer\"]"),
		Salary:         text(s, `.salary-snippet-container, [data-testid="attribute_snippet_testid"].salary-snippet`),
		ListingURL:     href,
		PostedDate:     text(s, "span.date"),
		EmploymentType: employmentFromLocation(location),
	}, nil
}
