package listing

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// SeenListings is the content of the exclude file: listings already reviewed by the user.
type SeenListings struct {
	Items []*SeenListing `json:"items"`
}

type SeenListing struct {
	URL     string    `json:"url"`
	Title   string    `json:"title"`
	Company string    `json:"company"`
	SeenAt  time.Time `json:"seenAt"`
}

// ToSeen converts the collection into exclude file entries stamped with now.
func (l *Listings) ToSeen(now time.Time) *SeenListings {
	seen := &SeenListings{}
	for _, item := range l.Items {
		seen.Items = append(seen.Items, &SeenListing{
			URL:     item.ListingURL,
			Title:   item.Title,
			Company: item.Company,
			SeenAt:  now.UTC(),
		})
	}
	return seen
}

// LoadSeenListings reads the exclude file. A missing or empty file yields an empty set.
func LoadSeenListings(path string) (*SeenListings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &SeenListings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &SeenListings{}, nil
	}

	var seen SeenListings
	if err := json.NewDecoder(file).Decode(&seen); err != nil {
		return nil, err
	}
	return &seen, nil
}

// Append adds entries whose URL is not yet present.
func (s *SeenListings) Append(other *SeenListings) {
	known := make(map[string]struct{}, len(s.Items))
	for _, item := range s.Items {
		known[item.URL] = struct{}{}
	}
	for _, item := range other.Items {
		if _, ok := known[item.URL]; ok {
			continue
		}
		known[item.URL] = struct{}{}
		s.Items = append(s.Items, item)
	}
}

func (s *SeenListings) URLs() []string {
	urls := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		urls = append(urls, item.URL)
	}
	return urls
}

func (s *SeenListings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
