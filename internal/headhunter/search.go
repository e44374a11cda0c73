package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/jobhound/internal/listing"
)

const (
	SearchPath = "/vacancies"
)

type SearchParams struct {
	Text string `hhparam:"text"`
	// hhparam is custom tag for reflect. Please see buildParams.
	Areas       []int    `hhparam:"area"`
	OrderBy     string   `hhparam:"order_by"`
	SearchField string   `hhparam:"search_field"`
	Schedules   []string `hhparam:"schedule"`
	PerPage     int      `hhparam:"per_page"`
	Experience  string   `hhparam:"experience"`
	Period      uint     `hhparam:"period"`
}

// Search runs the public vacancy search.
func (c *Client) Search(ctx context.Context, params SearchParams) (*Vacancies, error) {
	if params.PerPage <= 0 || params.PerPage > maxPerPage {
		params.PerPage = maxPerPage
	}

	q := buildParams(params)
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	items, err := c.GetItems(ctx, apiURLSearch, q)
	if err != nil {
		return nil, err
	}

	vacancies, err := decodeVacancies(items)
	if err != nil {
		return nil, err
	}

	return &Vacancies{
		Items: vacancies,
	}, nil
}

func decodeVacancies(items []Item) ([]*Vacancy, error) {
	var vacancies []*Vacancy

	cfg := &mapstructure.DecoderConfig{
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("%w: decode vacancies: %v", listing.ErrParseMismatch, err)
	}

	return vacancies, nil
}

func buildParams(params SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params)
	for _, field := range reflect.VisibleFields(value.Type()) {
		key := field.Tag.Get("hhparam")
		if key == "" {
			continue
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case []int:
			for _, item := range v {
				q.Add(key, strconv.Itoa(item))
			}
		case []string:
			for _, item := range v {
				q.Add(key, item)
			}
		default:
			s := fmt.Sprintf("%v", v)
			if s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}
