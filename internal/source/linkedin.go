package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

const LinkedInName = "LinkedIn"

const (
	// Guest search returns a bare list of cards without the logged-in shell.
	linkedInPath       = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedInContainers = "div.base-search-card, div.job-search-card"
)

type LinkedIn struct {
	base
}

func NewLinkedIn(cfg Config, client *http.Client, logger *zap.Logger) *LinkedIn {
	return &LinkedIn{base: newBase(LinkedInName, cfg, client, logger)}
}

func (a *LinkedIn) Search(ctx context.Context, query listing.SearchQuery) ([]listing.Record, error) {
	params := url.Values{}
	params.Set("keywords", query.Query)
	if query.HasLocation() {
		params.Set("location", query.Location)
	}

	doc, err := a.fetchDocument(ctx, a.searchURL(linkedInPath, params))
	if err != nil {
		return nil, err
	}

	return a.collect(doc, linkedInContainers, a.extract)
}

func (a *LinkedIn) extract(s *goquery.Selection) (listing.Record, error) {
	href, err := a.link(s, "a.base-card__full-link, a.base-search-card--link")
	if err != nil {
		return listing.Record{}, err
	}

	location := text(s, "span.job-search-card__location")

	return listing.Record{
		Title:          text(s, "h3.base-search-card__title"),
		Company:        text(s, "h4.base-search-card__subtitle"),
		Location:       location,
		Salary:         text(s, "span.job-search-card__salary-info"),
		ListingURL:     href,
		PostedDate:     attr(s, "time", "datetime"),
		EmploymentType: employmentFromLocation(location),
	}, nil
}
