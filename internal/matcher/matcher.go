package matcher

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

// MaxScore is the ceiling of every score. A perfect 100 is never reported.
const MaxScore = 95

// Weights is the scoring table. Every matching term adds its weight once.
type Weights struct {
	Title            int      `mapstructure:"title"`
	Skill            int      `mapstructure:"skill"`
	PreferredSource  int      `mapstructure:"preferred-source"`
	Remote           int      `mapstructure:"remote"`
	Max              int      `mapstructure:"max"`
	PreferredSources []string `mapstructure:"preferred-sources"`
}

func DefaultWeights() Weights {
	return Weights{
		Title:            40,
		Skill:            15,
		PreferredSource:  5,
		Remote:           10,
		Max:              MaxScore,
		PreferredSources: []string{"Indeed"},
	}
}

// Profile describes the candidate. Empty fields contribute nothing.
type Profile struct {
	// Skills is a comma-separated list, e.g. "react, node".
	Skills       string `json:"skills" mapstructure:"skills"`
	DesiredTitle string `json:"desiredTitle" mapstructure:"desired-title"`
}

func (p Profile) skillTerms() []string {
	var terms []string
	for _, s := range strings.Split(p.Skills, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			terms = append(terms, s)
		}
	}
	return terms
}

func (p Profile) IsEmpty() bool {
	return strings.TrimSpace(p.Skills) == "" && strings.TrimSpace(p.DesiredTitle) == ""
}

type Matcher struct {
	weights Weights
	logger  *zap.Logger
}

func New(weights Weights, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if weights.Max <= 0 || weights.Max > MaxScore {
		weights.Max = MaxScore
	}

	return &Matcher{
		weights: weights,
		logger:  logger.With(zap.String("component", "matcher")),
	}
}

// Score computes the additive match score of a record, clamped to [0, Max].
func (m *Matcher) Score(rec listing.Record, profile Profile) int {
	text := rec.Text()
	score := 0

	if title := strings.ToLower(strings.TrimSpace(profile.DesiredTitle)); title != "" && strings.Contains(text, title) {
		score += m.weights.Title
	}

	for _, term := range profile.skillTerms() {
		if strings.Contains(text, term) {
			score += m.weights.Skill
		}
	}

	for _, preferred := range m.weights.PreferredSources {
		if strings.EqualFold(strings.TrimSpace(preferred), rec.SourceName) {
			score += m.weights.PreferredSource
			break
		}
	}

	if strings.EqualFold(rec.EmploymentType, listing.EmploymentRemote) {
		score += m.weights.Remote
	}

	return clamp(score, 0, m.weights.Max)
}

// Rank scores every record and returns a new slice sorted by descending score.
// Ties keep their input order. The input is not modified.
func (m *Matcher) Rank(records []listing.Record, profile Profile) []listing.Record {
	ranked := make([]listing.Record, len(records))
	for i, rec := range records {
		score := m.Score(rec, profile)
		rec.MatchScore = &score
		ranked[i] = rec
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].MatchScore > *ranked[j].MatchScore
	})

	if len(ranked) > 0 {
		m.logger.Debug("ranked listings",
			zap.Int("count", len(ranked)),
			zap.Int("top score", *ranked[0].MatchScore),
		)
	}

	return ranked
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
