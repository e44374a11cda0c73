package headhunter

import (
	"fmt"
	"strings"
	"time"
)

const (
	ScheduleRemote = "remote"

	publishedLayout = "2006-01-02T15:04:05-0700"
)

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary *struct {
		From     int    `json:"from,omitempty"`
		To       int    `json:"to,omitempty"`
		Currency string `json:"currency,omitempty"`
	} `json:"salary,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employment struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employment,omitempty"`
	Employer struct {
		ID           string `json:"id,omitempty"`
		Name         string `json:"name,omitempty"`
		AlternateURL string `json:"alternate_url,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Snippet      struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

// SalaryString renders the salary fork, e.g. "100000-150000 RUR" or "from 100000 RUR".
func (va *Vacancy) SalaryString() string {
	s := va.Salary
	if s == nil || (s.From == 0 && s.To == 0) {
		return ""
	}

	switch {
	case s.From != 0 && s.To != 0:
		return strings.TrimSpace(fmt.Sprintf("%d-%d %s", s.From, s.To, s.Currency))
	case s.From != 0:
		return strings.TrimSpace(fmt.Sprintf("from %d %s", s.From, s.Currency))
	default:
		return strings.TrimSpace(fmt.Sprintf("up to %d %s", s.To, s.Currency))
	}
}

// Summary joins responsibility and requirement snippets without the search highlight markup.
func (va *Vacancy) Summary() string {
	parts := make([]string, 0, 2)
	for _, s := range []string{va.Snippet.Responsibility, va.Snippet.Requirement} {
		s = stripHighlight(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// IsRemote reports whether the vacancy schedule is remote work.
func (va *Vacancy) IsRemote() bool {
	return va.Schedule.ID == ScheduleRemote
}

var highlightReplacer = strings.NewReplacer("<highlighttext>", "", "</highlighttext>", "")

func stripHighlight(s string) string {
	return strings.TrimSpace(highlightReplacer.Replace(s))
}

// PostedDate returns the publication date in YYYY-MM-DD form when it can be parsed.
func (va *Vacancy) PostedDate() string {
	t, err := time.Parse(publishedLayout, va.PublishedAt)
	if err != nil {
		return va.PublishedAt
	}
	return t.Format(time.DateOnly)
}
