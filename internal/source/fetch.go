package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/utils"
)

const maxBodySize = 5 << 20

// base carries what every adapter shares: config, http client and a source-scoped logger.
type base struct {
	name   string
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

func newBase(name string, cfg Config, client *http.Client, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{}
	}
	return base{
		name:   name,
		cfg:    cfg.withDefaults(defaultConfigs[key(name)]),
		client: client,
		logger: logger.With(zap.String("source", name)),
	}
}

func (b *base) Name() string {
	return b.name
}

// searchURL builds BaseURL+path with percent-encoded params.
func (b *base) searchURL(path string, params url.Values) string {
	return b.cfg.BaseURL + path + "?" + params.Encode()
}

// fetch issues a single GET under the adapter timeout and returns the body.
func (b *base) fetch(ctx context.Context, rawURL, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", listing.ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", b.cfg.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	b.logger.Debug("make request", zap.String("url", rawURL))

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", listing.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: bad status: %s", listing.ErrSourceUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", listing.ErrSourceUnavailable, err)
	}

	return body, nil
}

func (b *base) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := b.fetch(ctx, rawURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", listing.ErrParseMismatch, err)
	}

	return doc, nil
}

type extractFunc func(s *goquery.Selection) (listing.Record, error)

// collect extracts records from every container in document order until MaxResults is reached.
// Zero containers means the page layout is not the one we know.
func (b *base) collect(doc *goquery.Document, containers string, extract extractFunc) ([]listing.Record, error) {
	nodes := doc.Find(containers)
	if nodes.Length() == 0 {
		return nil, fmt.Errorf("%w: no elements match %q", listing.ErrParseMismatch, containers)
	}

	records := make([]listing.Record, 0, min(nodes.Length(), b.cfg.MaxResults))
	nodes.EachWithBreak(func(i int, s *goquery.Selection) bool {
		rec, err := extract(s)
		if err != nil {
			b.logger.Debug("skip listing element", zap.Int("index", i), zap.Error(err))
			return true
		}
		records = b.accept(records, i, rec)
		return len(records) < b.cfg.MaxResults
	})

	return records, nil
}

// accept normalizes rec and appends it, skipping records that fail normalization.
func (b *base) accept(records []listing.Record, i int, rec listing.Record) []listing.Record {
	rec.SourceName = b.name
	rec, err := listing.Normalize(rec)
	if err != nil {
		b.logger.Debug("skip listing element", zap.Int("index", i), zap.Error(err))
		return records
	}
	return append(records, rec)
}

// link resolves the href of the first element matching sel against BaseURL.
func (b *base) link(s *goquery.Selection, sel string) (string, error) {
	href, ok := s.Find(sel).First().Attr("href")
	if !ok {
		return "", fmt.Errorf("%w: no link matches %q", listing.ErrParseMismatch, sel)
	}
	return listing.ResolveURL(b.cfg.BaseURL, href)
}

// text returns whitespace-collapsed text of the first non-empty match of sel.
func text(s *goquery.Selection, sel string) string {
	var out string
	s.Find(sel).EachWithBreak(func(_ int, n *goquery.Selection) bool {
		out = utils.CollapseSpace(n.Text())
		return out == ""
	})
	return out
}

func attr(s *goquery.Selection, sel, name string) string {
	v, _ := s.Find(sel).First().Attr(name)
	return strings.TrimSpace(v)
}

// employmentFromLocation marks listings whose location mentions remote work.
func employmentFromLocation(location string) string {
	if strings.Contains(strings.ToLower(location), "remote") {
		return listing.EmploymentRemote
	}
	return ""
}
