package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
)

type Assessment struct {
	Fit    bool
	Score  float64
	Reason string
	Raw    string
}

// Evaluator judges how well a single listing fits the candidate.
type Evaluator interface {
	Evaluate(ctx context.Context, profile matcher.Profile, rec listing.Record) (*Assessment, error)
}

// Reviewer annotates the first Top records with an AI assessment.
// It never reorders records or touches MatchScore.
type Reviewer struct {
	evaluator Evaluator
	top       int
	logger    *zap.Logger
}

func NewReviewer(evaluator Evaluator, top int, logger *zap.Logger) *Reviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{
		evaluator: evaluator,
		top:       top,
		logger:    logger.With(zap.String("component", "ai-review")),
	}
}

// Review returns a copy of records where up to Top leading entries carry a Review.
// A failed evaluation is recorded in Review.Error and the record is kept.
func (r *Reviewer) Review(ctx context.Context, records []listing.Record, profile matcher.Profile) []listing.Record {
	reviewed := make([]listing.Record, len(records))
	copy(reviewed, records)

	limit := len(reviewed)
	if r.top > 0 && r.top < limit {
		limit = r.top
	}

	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("ai review interrupted", zap.Int("reviewed", i), zap.Error(err))
			break
		}

		rec := reviewed[i]
		assessment, err := r.evaluator.Evaluate(ctx, profile, rec)
		if err != nil {
			r.logger.Warn("ai review failed", zap.String("url", rec.ListingURL), zap.Error(err))
			reviewed[i].Review = &listing.Review{Error: err.Error()}
			continue
		}

		r.logger.Info("ai review",
			zap.String("title", rec.Title),
			zap.String("company", rec.Company),
			zap.Bool("fit", assessment.Fit),
			zap.Float64("score", assessment.Score),
		)
		reviewed[i].Review = &listing.Review{
			Fit:    assessment.Fit,
			Score:  assessment.Score,
			Reason: assessment.Reason,
		}
	}

	return reviewed
}
