package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobhound/internal/ai"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
)

func ranked(scores ...int) *listing.Listings {
	l := &listing.Listings{}
	for i, s := range scores {
		score := s
		l.Items = append(l.Items, listing.Record{
			Title:      "Job",
			Company:    "Company",
			ListingURL: "https://example.com/" + string(rune('a'+i)),
			MatchScore: &score,
		})
	}
	return l
}

func sample() *listing.Listings {
	return listing.NewListings([]listing.Record{
		{Title: "Go Engineer", Company: "Acme", Description: "Great team", ListingURL: "https://a.example/1"},
		{Title: "Go Engineer", Company: "Acme", Description: "Great team", ListingURL: "https://a.example/1"},
		{Title: "Backend Dev", Company: "Globex", Description: "Unpaid trial week required", ListingURL: "https://b.example/2"},
		{Title: "SRE", Company: "Initech", Description: "On-call", ListingURL: "https://c.example/3"},
		{Title: "Crypto Wizard", Company: "MLM Inc", Description: "", ListingURL: "https://d.example/4"},
	})
}

func TestRunDefaultFilters(t *testing.T) {
	dir := t.TempDir()
	excludePath := filepath.Join(dir, "seen.json")
	seen := listing.NewListings([]listing.Record{{Title: "SRE", Company: "Initech", ListingURL: "https://c.example/3"}}).ToSeen(time.Now())
	if err := seen.ToFile(excludePath); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	cfg := &Config{
		Dedupe:      true,
		Companies:   []string{"mlm inc"},
		RedFlags:    []string{"unpaid"},
		ExcludeFile: excludePath,
	}

	core, logs := observer.New(zapcore.InfoLevel)
	out, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Default(), sample())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := out.URLs(); !reflect.DeepEqual(got, []string{"https://a.example/1"}) {
		t.Fatalf("unexpected listings left: %v", got)
	}

	steps := logs.FilterMessage("filter step").All()
	if len(steps) != len(Default()) {
		t.Fatalf("expected a log line per step, got %d", len(steps))
	}
	if steps[0].ContextMap()["name"] != "dedupe" || steps[0].ContextMap()["dropped"] != int64(1) {
		t.Fatalf("unexpected dedupe step log: %v", steps[0].ContextMap())
	}
}

func TestRunWithoutConfigKeepsEverything(t *testing.T) {
	out, err := Run(context.Background(), &Config{}, Deps{}, Default(), sample())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 5 {
		t.Fatalf("expected all listings kept, got %d", out.Len())
	}
}

func TestDisabledFilterIsSkipped(t *testing.T) {
	steps := Default()
	DisableByName(steps, "red_flags", "flag")

	out, err := Run(context.Background(), &Config{RedFlags: []string{"unpaid"}}, Deps{}, steps, sample())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 5 {
		t.Fatalf("disabled red_flags must not drop listings, got %d", out.Len())
	}

	for _, s := range Describe(steps) {
		if s.Name == "red_flags" && (s.Enabled || s.Reason != "flag") {
			t.Fatalf("unexpected status %+v", s)
		}
	}
}

func TestDisableAll(t *testing.T) {
	steps := Default()
	DisableAll(steps, "no-filters")

	for _, s := range steps {
		if s.IsEnabled() {
			t.Fatalf("%s still enabled", s.Name())
		}
	}
}

func TestMinimumScore(t *testing.T) {
	out, err := Run(context.Background(), &Config{MinimumScore: 40}, Deps{}, []Filter{NewMinimumScore()}, ranked(70, 10, 40, 39))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 2 || out.Items[0].Score() != 70 || out.Items[1].Score() != 40 {
		t.Fatalf("unexpected listings: %+v", out.Items)
	}
}

func TestMinimumScoreValidation(t *testing.T) {
	_, err := Run(context.Background(), &Config{MinimumScore: 120}, Deps{}, []Filter{NewMinimumScore()}, ranked(1))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestExcludeFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, sample()); err == nil {
		t.Fatalf("expected error for broken exclude file")
	}
}

func TestContainsRedFlag(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
		want  bool
	}{
		{name: "no flags", want: false},
		{name: "match in description", flags: []string{"Commission ONLY"}, want: true},
		{name: "match in company", flags: []string{"pyramid"}, want: true},
		{name: "empty flag ignored", flags: []string{""}, want: false},
		{name: "no match", flags: []string{"unpaid"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainsRedFlag("Sales rep", "Pyramid Co", "commission only pay", tt.flags)
			if got != tt.want {
				t.Fatalf("ContainsRedFlag() = %v, want %v", got, tt.want)
			}
		})
	}
}

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(_ context.Context, _ matcher.Profile, rec listing.Record) (*ai.Assessment, error) {
	switch rec.Company {
	case "Acme":
		return &ai.Assessment{Fit: true, Score: 0.9}, nil
	case "Globex":
		return nil, errors.New("quota")
	default:
		return &ai.Assessment{Fit: false, Score: 0.1}, nil
	}
}

func TestAIReview(t *testing.T) {
	deps := Deps{Reviewer: ai.NewReviewer(stubEvaluator{}, 0, nil)}
	l := listing.NewListings([]listing.Record{
		{Title: "Go", Company: "Acme", ListingURL: "https://a.example/1"},
		{Title: "Go", Company: "Globex", ListingURL: "https://b.example/2"},
		{Title: "Go", Company: "Initech", ListingURL: "https://c.example/3"},
	})

	cfg := &Config{AI: AIConfig{Enabled: true, Provider: "gemini", DropUnfit: true}}
	out, err := Run(context.Background(), cfg, deps, []Filter{NewAIReview()}, l)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := out.URLs(); !reflect.DeepEqual(got, []string{"https://a.example/1", "https://b.example/2"}) {
		t.Fatalf("expected unfit listing dropped and failed review kept, got %v", got)
	}
	if out.Items[1].Review == nil || out.Items[1].Review.Error != "quota" {
		t.Fatalf("expected error annotation, got %+v", out.Items[1].Review)
	}
}

func TestAIReviewKeepsUnfitWithoutDrop(t *testing.T) {
	deps := Deps{Reviewer: ai.NewReviewer(stubEvaluator{}, 0, nil)}
	l := listing.NewListings([]listing.Record{{Title: "Go", Company: "Initech", ListingURL: "https://c.example/3"}})

	out, err := Run(context.Background(), &Config{AI: AIConfig{Enabled: true, Provider: "gemini"}}, deps, []Filter{NewAIReview()}, l)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 1 || out.Items[0].Review == nil || out.Items[0].Review.Fit {
		t.Fatalf("expected annotated unfit listing to be kept, got %+v", out.Items)
	}
}

func TestAIReviewValidation(t *testing.T) {
	_, err := Run(context.Background(), &Config{AI: AIConfig{Enabled: true}}, Deps{}, []Filter{NewAIReview()}, sample())
	if err == nil {
		t.Fatalf("expected error without provider")
	}
}

func TestAIReviewWithoutReviewer(t *testing.T) {
	out, err := Run(context.Background(), &Config{AI: AIConfig{Enabled: true, Provider: "gemini"}}, Deps{}, []Filter{NewAIReview()}, sample())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 5 {
		t.Fatalf("expected listings untouched")
	}
}
