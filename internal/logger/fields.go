package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AIFields returns fields that describe the AI provider and model.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}

// QueryFields describes a search query. The limit is omitted when it is not set.
func QueryFields(q listing.SearchQuery) []zap.Field {
	limit := ""
	if q.Limit > 0 {
		limit = strconv.Itoa(q.Limit)
	}
	return StringFields(
		StringField{Key: "query", Value: q.Query},
		StringField{Key: "location", Value: q.Location},
		StringField{Key: "limit", Value: limit},
	)
}

// RecordFields is the printable view of a listing used by the CLI.
func RecordFields(rec listing.Record) []zap.Field {
	score := ""
	if rec.MatchScore != nil {
		score = strconv.Itoa(*rec.MatchScore)
	}

	fields := StringFields(
		StringField{Key: "title", Value: rec.Title},
		StringField{Key: "company", Value: rec.Company},
		StringField{Key: "location", Value: rec.Location},
		StringField{Key: "salary", Value: rec.Salary},
		StringField{Key: "source", Value: rec.SourceName},
		StringField{Key: "employment", Value: rec.EmploymentType},
		StringField{Key: "posted", Value: rec.PostedDate},
		StringField{Key: "score", Value: score},
		StringField{Key: "url", Value: rec.ListingURL},
	)

	if rec.Review != nil {
		if rec.Review.Error != "" {
			fields = append(fields, zap.String("ai_error", rec.Review.Error))
		} else {
			fields = append(fields,
				zap.Bool("ai_fit", rec.Review.Fit),
				zap.Float64("ai_score", rec.Review.Score),
			)
			fields = append(fields, StringFields(StringField{Key: "ai_reason", Value: rec.Review.Reason})...)
		}
	}

	return fields
}
