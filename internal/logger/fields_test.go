package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobhound/internal/listing"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestWithAIFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithAIFields(zap.New(core), "  gemini ", "model-x").Info("test log")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "model-x" {
		t.Fatalf("unexpected fields: %v", ctx)
	}

	if len(AIFields("", "")) != 0 {
		t.Fatalf("expected empty fields")
	}
}

func TestQueryFields(t *testing.T) {
	fields := QueryFields(listing.SearchQuery{Query: "go"})
	if len(fields) != 1 || fields[0].Key != "query" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	fields = QueryFields(listing.SearchQuery{Query: "go", Location: "Berlin", Limit: 5})
	if len(fields) != 3 || fields[2].String != "5" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestRecordFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	score := 70

	zap.New(core).Info("listing", RecordFields(listing.Record{
		Title:      "Go Developer",
		Company:    "Acme",
		ListingURL: "https://example.com/1",
		MatchScore: &score,
		Review:     &listing.Review{Fit: true, Score: 0.8, Reason: "good"},
	})...)

	ctx := observed.All()[0].ContextMap()
	if ctx["score"] != "70" || ctx["ai_fit"] != true || ctx["ai_reason"] != "good" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if _, ok := ctx["salary"]; ok {
		t.Fatalf("empty salary must be omitted")
	}
}

func TestNew(t *testing.T) {
	for _, json := range []bool{true, false} {
		l, err := New(json, true)
		if err != nil {
			t.Fatalf("new logger (json=%v): %v", json, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level enabled")
		}
	}

	l, err := New(false, false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug level must be disabled by default")
	}
}
