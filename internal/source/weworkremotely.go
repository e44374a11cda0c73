package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

const WeWorkRemotelyName = "We Work Remotely"

const (
	weWorkRemotelyPath = "/remote-jobs/search"
	// Both the classic list and the redesigned listing cards.
	weWorkRemotelyContainers = "section.jobs li:not(.view-all), li.new-listing-container"
)

type WeWorkRemotely struct {
	base
}

func NewWeWorkRemotely(cfg Config, client *http.Client, logger *zap.Logger) *WeWorkRemotely {
	return &WeWorkRemotely{base: newBase(WeWorkRemotelyName, cfg, client, logger)}
}

// Search ignores the location: every listing on the board is remote.
func (a *WeWorkRemotely) Search(ctx context.Context, query listing.SearchQuery) ([]listing.Record, error) {
	params := url.Values{}
	params.Set("term", query.Query)

	doc, err := a.fetchDocument(ctx, a.searchURL(weWorkRemotelyPath, params))
	if err != nil {
		return nil, err
	}

	return a.collect(doc, weWorkRemotelyContainers, a.extract)
}

func (a *WeWorkRemotely) extract(s *goquery.Selection) (listing.Record, error) {
	href, err := a.link(s, `a[href^="/remote-jobs/"], a[href*="weworkremotely.com/remote-jobs/"]`)
	if err != nil {
		return listing.Record{}, err
	}

	return listing.Record{
		Title:          text(s, "span.title, h4.new-listing__header__title"),
		Company:        text(s, "span.company, p.new-listing__company-name"),
		Location:       text(s, "span.region, p.new-listing__company-headquarters"),
		Description:    text(s, "div.new-listing__categories"),
		ListingURL:     href,
		PostedDate:     attr(s, "time", "datetime"),
		EmploymentType: listing.EmploymentRemote,
	}, nil
}
