package listing

import (
	"fmt"
	"strings"
)

// SearchQuery is the immutable input of a search.
// An empty Location means the location is absent and Limit <= 0 means the default cap applies.
type SearchQuery struct {
	Query    string `json:"query" mapstructure:"query"`
	Location string `json:"location,omitempty" mapstructure:"location"`
	Limit    int    `json:"limit,omitempty" mapstructure:"limit"`
}

// Validate rejects queries without a search term.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// HasLocation reports whether a location was provided.
func (q SearchQuery) HasLocation() bool {
	return strings.TrimSpace(q.Location) != ""
}
