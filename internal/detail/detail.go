package detail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/source"
	"github.com/spigell/jobhound/internal/utils"
)

const (
	DefaultTimeout        = 15 * time.Second
	DefaultMaxDescription = 1000
	// Placeholder is returned when the page loaded but no description block was found.
	Placeholder = "Job description not available"

	maxBodySize = 10 << 20
)

// descriptionSelectors is tried in order. It covers the boards we search plus generic layouts,
// since the fetcher does not know which adapter produced the URL.
var descriptionSelectors = []string{
	"#jobDescriptionText",
	".jobsearch-jobDescriptionText",
	".show-more-less-html__markup",
	".description__text",
	"#job-listing-show-container",
	".listing-container",
	".vacancy-description",
	`[data-qa="vacancy-description"]`,
	".job-description",
	"div.description",
	`[class*="description"]`,
	"article",
	"main",
}

type Config struct {
	UserAgent      string        `mapstructure:"user-agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxDescription int           `mapstructure:"max-description"`
}

// Fetcher loads a single listing page and extracts its full description and apply link.
type Fetcher struct {
	client *http.Client
	cfg    Config
	logger *zap.Logger
}

func New(client *http.Client, cfg Config, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = source.DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxDescription <= 0 {
		cfg.MaxDescription = DefaultMaxDescription
	}

	return &Fetcher{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "detail")),
	}
}

// Fetch returns nil and an error wrapping listing.ErrDetailUnavailable on any failure.
func (f *Fetcher) Fetch(ctx context.Context, listingURL string) (d *listing.Detail, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("%w: %v", listing.ErrDetailUnavailable, r)
		}
		if err != nil {
			f.logger.Debug("detail unavailable", zap.String("url", listingURL), zap.Error(err))
		}
	}()

	doc, err := f.fetchDocument(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	d = &listing.Detail{
		Description: f.description(doc),
	}

	apply, err := f.applyURL(doc, listingURL)
	if err != nil {
		f.logger.Debug("apply link not resolved", zap.String("url", listingURL), zap.Error(err))
	}
	d.ApplyURL = apply

	return d, nil
}

func (f *Fetcher) fetchDocument(ctx context.Context, listingURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", listing.ErrDetailUnavailable, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", listing.ErrDetailUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: bad status: %s", listing.ErrDetailUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", listing.ErrDetailUnavailable, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", listing.ErrDetailUnavailable, err)
	}

	return doc, nil
}

func (f *Fetcher) description(doc *goquery.Document) string {
	// Scripts and styles inside a matched block would leak into the text.
	doc.Find("script, style, noscript").Remove()

	for _, sel := range descriptionSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = utils.CollapseSpace(s.Text())
			return found == ""
		})
		if found != "" {
			return utils.Truncate(found, f.cfg.MaxDescription)
		}
	}

	return Placeholder
}

// applyURL finds the first anchor whose href or class mentions "apply" and resolves it
// against the listing origin.
func (f *Fetcher) applyURL(doc *goquery.Document, listingURL string) (string, error) {
	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		h, _ := s.Attr("href")
		class, _ := s.Attr("class")
		if strings.Contains(strings.ToLower(h), "apply") || strings.Contains(strings.ToLower(class), "apply") {
			href = h
			return false
		}
		return true
	})
	if href == "" {
		return "", nil
	}

	origin, err := listing.Origin(listingURL)
	if err != nil {
		return "", err
	}

	return listing.ResolveURL(origin, href)
}
