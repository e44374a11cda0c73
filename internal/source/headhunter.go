package source

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/headhunter"
	"github.com/spigell/jobhound/internal/listing"
)

const HeadHunterName = "HeadHunter"

// HeadHunter searches vacancies through the public hh.ru API.
type HeadHunter struct {
	base
	api *headhunter.Client
}

func NewHeadHunter(cfg Config, client *http.Client, logger *zap.Logger) *HeadHunter {
	a := &HeadHunter{base: newBase(HeadHunterName, cfg, client, logger)}
	a.api = headhunter.New(a.client, a.logger)
	a.api.APIURL = a.cfg.BaseURL
	a.api.UserAgent = a.cfg.UserAgent
	return a
}

// Search maps a "remote" location onto the remote schedule filter. Other locations
// are free text on hh.ru and go into the search text.
func (a *HeadHunter) Search(ctx context.Context, query listing.SearchQuery) ([]listing.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	params := headhunter.SearchParams{
		Text:    query.Query,
		PerPage: a.cfg.MaxResults,
	}
	if query.HasLocation() {
		if strings.EqualFold(strings.TrimSpace(query.Location), listing.EmploymentRemote) {
			params.Schedules = []string{headhunter.ScheduleRemote}
		} else {
			params.Text = query.Query + " " + query.Location
		}
	}

	vacancies, err := a.api.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	records := make([]listing.Record, 0, min(vacancies.Len(), a.cfg.MaxResults))
	for i, v := range vacancies.Items {
		records = a.accept(records, i, vacancyRecord(v))
		if len(records) >= a.cfg.MaxResults {
			break
		}
	}

	return records, nil
}

func vacancyRecord(v *headhunter.Vacancy) listing.Record {
	employment := v.Employment.Name
	if v.IsRemote() {
		employment = listing.EmploymentRemote
	}

	return listing.Record{
		Title:          v.Name,
		Company:        v.Employer.Name,
		Location:       v.Area.Name,
		Description:    v.Summary(),
		Salary:         v.SalaryString(),
		ListingURL:     v.AlternateURL,
		PostedDate:     v.PostedDate(),
		EmploymentType: employment,
	}
}
