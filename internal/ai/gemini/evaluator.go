package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/ai"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
	"github.com/spigell/jobhound/internal/utils"
)

const (
	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	maxSingleLineRunes      = 200

	systemPrompt = "You are a careful technical recruiter. You reply with strict JSON only."
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// PromptOverrides are user supplied additions to the prompt. Every value is sanitized.
type PromptOverrides struct {
	CandidateSummary  string `mapstructure:"candidate-summary"`
	ExtraCriteria     string `mapstructure:"extra-criteria"`
	DealBreakers      string `mapstructure:"deal-breakers"`
	CustomKeywords    string `mapstructure:"custom-keywords"`
	RegionConstraints string `mapstructure:"region-constraints"`
	UserInstructions  string `mapstructure:"user-instructions"`
}

// Evaluator asks Gemini to assess a listing against the candidate profile.
type Evaluator struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

func NewEvaluator(generator contentGenerator, minScore float64, maxLogLength int, logger *zap.Logger) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Evaluator{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (e *Evaluator) SetPromptOverrides(o PromptOverrides) {
	e.overrides = o
}

func (e *Evaluator) Evaluate(ctx context.Context, profile matcher.Profile, rec listing.Record) (*ai.Assessment, error) {
	if rec.ListingURL == "" {
		return nil, fmt.Errorf("listing url is required")
	}

	profilePayload := map[string]any{
		"skills":       profile.Skills,
		"desiredTitle": profile.DesiredTitle,
	}
	if summary := strings.TrimSpace(e.overrides.CandidateSummary); summary != "" {
		profilePayload["summary"] = summary
	}

	profileJSON, err := json.MarshalIndent(profilePayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	// Scores and previous reviews would bias the model.
	rec.MatchScore = nil
	rec.Review = nil
	listingJSON, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal listing payload: %w", err)
	}

	prompt := e.buildPrompt(string(profileJSON), string(listingJSON))

	e.logger.Debug("gemini generate content request",
		zap.String("url", rec.ListingURL),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.String("url", rec.ListingURL),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if e.minScore > 0 && assessment.Score < e.minScore {
		e.logger.Debug("set fit to false by score threshold",
			zap.String("url", rec.ListingURL),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", e.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func (e *Evaluator) buildPrompt(profileJSON, listingJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate:\n{{PROFILE_JSON}}\n\nListing:\n{{LISTING_JSON}}\n\nJSON Response:"
	}

	r := strings.NewReplacer(
		"{{EXTRA_CRITERIA}}", singleLine(e.overrides.ExtraCriteria),
		"{{DEAL_BREAKERS}}", singleLine(e.overrides.DealBreakers),
		"{{CUSTOM_KEYWORDS}}", keywords(e.overrides.CustomKeywords),
		"{{REGION_CONSTRAINTS}}", singleLine(e.overrides.RegionConstraints),
		"{{USER_INSTRUCTIONS}}", userInstructions(e.overrides.UserInstructions),
		"{{PROFILE_JSON}}", profileJSON,
		"{{LISTING_JSON}}", listingJSON,
	)
	return r.Replace(template)
}

var bracketReplacer = strings.NewReplacer("[", "(", "]", ")", "{{", "(", "}}", ")")

// singleLine flattens a user value into one line so it cannot open a new prompt section.
func singleLine(s string) string {
	s = utils.Truncate(utils.CollapseSpace(bracketReplacer.Replace(s)), maxSingleLineRunes)
	if s == "" {
		return "none"
	}
	return s
}

func keywords(s string) string {
	var parts []string
	for _, k := range strings.Split(s, ",") {
		if k = utils.CollapseSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	return singleLine(strings.Join(parts, ", "))
}

// userInstructions renders free text as an indented list, one item per non-empty line.
func userInstructions(s string) string {
	s = utils.Truncate(bracketReplacer.Replace(s), maxUserInstructionRunes)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = utils.CollapseSpace(line); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.Assessment{
		Fit:    coerceBool(data["fit"]),
		Score:  score,
		Reason: coerceString(data["reason"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start != -1 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
