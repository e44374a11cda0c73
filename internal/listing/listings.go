package listing

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

const (
	RecordURLField     = "URL"
	RecordCompanyField = "Company"
)

// Listings is an ordered collection of records passed through the filtering steps.
type Listings struct {
	Items []Record `json:"items"`
}

// NewListings copies records into a new collection.
func NewListings(records []Record) *Listings {
	items := make([]Record, len(records))
	copy(items, records)
	return &Listings{Items: items}
}

func (l *Listings) Len() int {
	return len(l.Items)
}

// FindByURL returns the first record with the given listing URL or nil.
func (l *Listings) FindByURL(url string) *Record {
	for i := range l.Items {
		if l.Items[i].ListingURL == url {
			return &l.Items[i]
		}
	}
	return nil
}

func (l *Listings) URLs() []string {
	urls := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		urls = append(urls, item.ListingURL)
	}
	return urls
}

func (r Record) stringField(name string) string {
	switch name {
	case RecordURLField:
		return r.ListingURL
	case RecordCompanyField:
		return r.Company
	default:
		return ""
	}
}

// Exclude removes every record whose field matches one of targets (case-insensitive).
// Order of the remaining records is preserved. It returns listing URLs of removed records.
func (l *Listings) Exclude(field string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}

	return l.RemoveFunc(func(r Record) bool {
		_, ok := set[strings.ToLower(strings.TrimSpace(r.stringField(field)))]
		return ok
	})
}

// RemoveFunc removes records for which drop returns true, keeping order.
func (l *Listings) RemoveFunc(drop func(Record) bool) []string {
	var removed []string
	kept := l.Items[:0]
	for _, item := range l.Items {
		if drop(item) {
			removed = append(removed, item.ListingURL)
			continue
		}
		kept = append(kept, item)
	}
	l.Items = kept
	return removed
}

// ReportBySource groups a short view of every record by its source name.
func (l *Listings) ReportBySource() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range l.Items {
		entry := map[string]string{
			"title":    item.Title,
			"company":  item.Company,
			"location": item.Location,
			"url":      item.ListingURL,
		}
		if item.Salary != "" {
			entry["salary"] = item.Salary
		}
		if item.EmploymentType != "" {
			entry["employment type"] = item.EmploymentType
		}
		if item.MatchScore != nil {
			entry["match score"] = strconv.Itoa(*item.MatchScore)
		}
		if item.Review != nil {
			if item.Review.Error != "" {
				entry["ai_error"] = item.Review.Error
			} else {
				entry["ai_fit"] = strconv.FormatBool(item.Review.Fit)
				entry["ai_score"] = strconv.FormatFloat(item.Review.Score, 'f', -1, 64)
				entry["ai_reason"] = item.Review.Reason
			}
		}
		report[item.SourceName] = append(report[item.SourceName], entry)
	}
	return report
}

func (l *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}
