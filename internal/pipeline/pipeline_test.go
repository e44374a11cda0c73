package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/spigell/jobhound/internal/aggregator"
	"github.com/spigell/jobhound/internal/filtering"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
)

type stubSearcher struct {
	records []listing.Record
	sources []aggregator.SourceResult
	err     error
	got     listing.SearchQuery
}

func (s *stubSearcher) SearchDetailed(_ context.Context, q listing.SearchQuery) ([]listing.Record, []aggregator.SourceResult, error) {
	s.got = q
	return s.records, s.sources, s.err
}

func records() []listing.Record {
	return []listing.Record{
		{Title: "Office Manager", Company: "Acme", ListingURL: "https://a.example/1", SourceName: "LinkedIn"},
		{Title: "Go Engineer", Company: "Globex", Description: "kubernetes", ListingURL: "https://b.example/2", SourceName: "LinkedIn"},
		{Title: "Go Engineer", Company: "Globex", Description: "kubernetes", ListingURL: "https://b.example/2", SourceName: "LinkedIn"},
		{Title: "Engineer", Company: "Initech", Description: "unpaid", ListingURL: "https://c.example/3", SourceName: "LinkedIn"},
	}
}

func TestRunRanksThenFilters(t *testing.T) {
	searcher := &stubSearcher{
		records: records(),
		sources: []aggregator.SourceResult{{Source: "LinkedIn", Records: records()}},
	}
	p := New(searcher, matcher.New(matcher.DefaultWeights(), nil), Config{
		Filters: filtering.Config{Dedupe: true, RedFlags: []string{"unpaid"}},
	}, nil)

	query := listing.SearchQuery{Query: "go", Limit: 5}
	res, err := p.Run(context.Background(), query, matcher.Profile{DesiredTitle: "engineer", Skills: "kubernetes"}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if searcher.got != query {
		t.Fatalf("query not forwarded: %+v", searcher.got)
	}
	want := []string{"https://b.example/2", "https://a.example/1"}
	if got := res.Listings.URLs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order %v, want %v", got, want)
	}
	if res.Listings.Items[0].Score() != 55 {
		t.Fatalf("expected score 55, got %d", res.Listings.Items[0].Score())
	}
	if len(res.Sources) != 1 || res.Query != query {
		t.Fatalf("unexpected result metadata: %+v", res)
	}
}

func TestRunReturnsSearchError(t *testing.T) {
	searcher := &stubSearcher{err: listing.ErrInvalidQuery}
	p := New(searcher, matcher.New(matcher.DefaultWeights(), nil), Config{}, nil)

	_, err := p.Run(context.Background(), listing.SearchQuery{}, matcher.Profile{}, nil)
	if !errors.Is(err, listing.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestRunReturnsFilterError(t *testing.T) {
	searcher := &stubSearcher{records: records()}
	p := New(searcher, matcher.New(matcher.DefaultWeights(), nil), Config{
		Filters: filtering.Config{MinimumScore: -1},
	}, nil)

	if _, err := p.Run(context.Background(), listing.SearchQuery{Query: "go"}, matcher.Profile{}, nil); err == nil {
		t.Fatalf("expected filter validation error")
	}
}

func TestRunWithDisabledFilters(t *testing.T) {
	searcher := &stubSearcher{records: records()}
	p := New(searcher, matcher.New(matcher.DefaultWeights(), nil), Config{
		Filters: filtering.Config{Dedupe: true},
	}, nil)

	steps := filtering.Default()
	filtering.DisableAll(steps, "test")

	res, err := p.Run(context.Background(), listing.SearchQuery{Query: "go"}, matcher.Profile{}, steps)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Listings.Len() != 4 {
		t.Fatalf("expected all listings, got %d", res.Listings.Len())
	}
}

func TestRunEmptySearch(t *testing.T) {
	p := New(&stubSearcher{records: []listing.Record{}}, matcher.New(matcher.DefaultWeights(), nil), Config{}, nil)

	res, err := p.Run(context.Background(), listing.SearchQuery{Query: "go"}, matcher.Profile{}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Listings.Len() != 0 {
		t.Fatalf("expected no listings")
	}
}
