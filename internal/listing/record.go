package listing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spigell/jobhound/internal/utils"
)

const (
	// DefaultLocation is used when a source does not provide a parsable location.
	DefaultLocation = "Not specified"
	// MaxDescriptionLength bounds descriptions produced by source adapters.
	MaxDescriptionLength = 300
	// EmploymentRemote is the employment type value that earns the remote bonus.
	EmploymentRemote = "Remote"
)

// Record is a normalized job listing produced by any source adapter.
type Record struct {
	Title          string  `json:"title"`
	Company        string  `json:"company"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
	Salary         string  `json:"salary,omitempty"`
	ListingURL     string  `json:"listingUrl"`
	ApplyURL       string  `json:"applyUrl,omitempty"`
	SourceName     string  `json:"sourceName"`
	PostedDate     string  `json:"postedDate,omitempty"`
	EmploymentType string  `json:"employmentType,omitempty"`
	MatchScore     *int    `json:"matchScore,omitempty"`
	Review         *Review `json:"review,omitempty"`
}

// Review is an optional AI assessment attached to a record. It never changes MatchScore.
type Review struct {
	Fit    bool    `json:"fit"`
	Score  float64 `json:"score,omitempty"`
	Reason string  `json:"reason,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Detail is the result of fetching a single listing page.
type Detail struct {
	Description string `json:"description"`
	ApplyURL    string `json:"applyUrl,omitempty"`
}

// Score returns the match score or 0 for unranked records.
func (r Record) Score() int {
	if r.MatchScore == nil {
		return 0
	}
	return *r.MatchScore
}

// Text is the lowercase haystack used for term matching.
func (r Record) Text() string {
	return strings.ToLower(r.Title + " " + r.Description)
}

// Normalize trims and bounds every field and applies defaults.
// Records without a title, company or absolute listing URL are rejected.
func Normalize(r Record) (Record, error) {
	r.Title = utils.CollapseSpace(r.Title)
	r.Company = utils.CollapseSpace(r.Company)
	r.Location = utils.CollapseSpace(r.Location)
	r.Description = utils.Truncate(utils.CollapseSpace(r.Description), MaxDescriptionLength)
	r.Salary = utils.CollapseSpace(r.Salary)
	r.PostedDate = strings.TrimSpace(r.PostedDate)
	r.EmploymentType = strings.TrimSpace(r.EmploymentType)
	r.ListingURL = strings.TrimSpace(r.ListingURL)
	r.ApplyURL = strings.TrimSpace(r.ApplyURL)

	switch {
	case r.Title == "":
		return Record{}, fmt.Errorf("%w: missing title", ErrParseMismatch)
	case r.Company == "":
		return Record{}, fmt.Errorf("%w: missing company for %q", ErrParseMismatch, r.Title)
	case r.ListingURL == "":
		return Record{}, fmt.Errorf("%w: missing listing url for %q", ErrParseMismatch, r.Title)
	}

	if !isAbsoluteHTTP(r.ListingURL) {
		return Record{}, fmt.Errorf("%w: listing url %q is not absolute", ErrParseMismatch, r.ListingURL)
	}

	if r.Location == "" {
		r.Location = DefaultLocation
	}
	if r.ApplyURL == "" {
		r.ApplyURL = r.ListingURL
	}

	return r, nil
}

// ResolveURL resolves href against base. Absolute hrefs are returned unchanged.
func ResolveURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("%w: empty href", ErrParseMismatch)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: parse href %q: %v", ErrParseMismatch, href, err)
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}

	resolved := baseURL.ResolveReference(ref)
	if !isAbsoluteHTTP(resolved.String()) {
		return "", fmt.Errorf("%w: cannot resolve %q against %q", ErrParseMismatch, href, base)
	}

	return resolved.String(), nil
}

// Origin returns scheme://host of rawURL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no origin", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
