package ai

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
)

type stubEvaluator struct {
	calls   []string
	failFor map[string]error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ matcher.Profile, rec listing.Record) (*Assessment, error) {
	s.calls = append(s.calls, rec.ListingURL)
	if err := s.failFor[rec.ListingURL]; err != nil {
		return nil, err
	}
	return &Assessment{Fit: rec.Title != "Chef", Score: 0.8, Reason: "checked " + rec.Title}, nil
}

func records() []listing.Record {
	score := 40
	return []listing.Record{
		{Title: "Engineer", ListingURL: "https://x.example/1", MatchScore: &score},
		{Title: "Chef", ListingURL: "https://x.example/2"},
		{Title: "Broken", ListingURL: "https://x.example/3"},
		{Title: "Late", ListingURL: "https://x.example/4"},
	}
}

func TestReviewAnnotatesTopRecords(t *testing.T) {
	eval := &stubEvaluator{failFor: map[string]error{"https://x.example/3": errors.New("quota")}}
	input := records()

	out := NewReviewer(eval, 3, zap.NewNop()).Review(context.Background(), input, matcher.Profile{Skills: "go"})

	if len(eval.calls) != 3 {
		t.Fatalf("expected 3 evaluations, got %d", len(eval.calls))
	}
	if out[0].Review == nil || !out[0].Review.Fit || out[0].Review.Reason != "checked Engineer" {
		t.Fatalf("unexpected review %+v", out[0].Review)
	}
	if out[1].Review == nil || out[1].Review.Fit {
		t.Fatalf("expected unfit review for Chef, got %+v", out[1].Review)
	}
	if out[2].Review == nil || out[2].Review.Error != "quota" {
		t.Fatalf("expected error annotation, got %+v", out[2].Review)
	}
	if out[3].Review != nil {
		t.Fatalf("records beyond top must not be reviewed")
	}
	if *out[0].MatchScore != 40 {
		t.Fatalf("review must not change match score")
	}
	for _, rec := range input {
		if rec.Review != nil {
			t.Fatalf("input was mutated")
		}
	}
}

func TestReviewZeroTopReviewsAll(t *testing.T) {
	eval := &stubEvaluator{}
	out := NewReviewer(eval, 0, nil).Review(context.Background(), records(), matcher.Profile{})

	if len(eval.calls) != len(out) {
		t.Fatalf("expected all records reviewed, got %d", len(eval.calls))
	}
}

func TestReviewStopsOnCancelledContext(t *testing.T) {
	eval := &stubEvaluator{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewReviewer(eval, 0, nil).Review(ctx, records(), matcher.Profile{})

	if len(eval.calls) != 0 {
		t.Fatalf("expected no evaluations, got %d", len(eval.calls))
	}
	if len(out) != 4 {
		t.Fatalf("records must be kept, got %d", len(out))
	}
}
