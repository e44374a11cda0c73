package headhunter

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

const pageZero = `{
  "found": 3, "pages": 2, "page": 0, "per_page": 2,
  "items": [
    {
      "id": "101", "name": "Go developer",
      "area": {"id": "1", "name": "Moscow"},
      "salary": {"from": 200000, "to": 300000, "currency": "RUR"},
      "schedule": {"id": "remote", "name": "Remote work"},
      "employment": {"id": "full", "name": "Full employment"},
      "employer": {"id": 77, "name": "Acme"},
      "alternate_url": "https://hh.ru/vacancy/101",
      "snippet": {"requirement": "Experience with <highlighttext>Go</highlighttext>", "responsibility": "Build services"},
      "published_at": "2025-01-02T10:00:00+0300"
    },
    {
      "id": "102", "name": "SRE",
      "area": {"id": "2", "name": "Saint Petersburg"},
      "salary": null,
      "schedule": {"id": "fullDay", "name": "Full day"},
      "employment": {"id": "full", "name": "Full employment"},
      "employer": {"id": "78", "name": "Globex"},
      "alternate_url": "https://hh.ru/vacancy/102"
    }
  ]
}`

const pageOne = `{"found": 3, "pages": 2, "page": 1, "per_page": 2, "items": [
  {"id": "103", "name": "Platform engineer", "employer": {"name": "Initech"}, "alternate_url": "https://hh.ru/vacancy/103"}
]}`

func newTestClient(url string) *Client {
	c := New(http.DefaultClient, zap.NewNop())
	c.APIURL = url
	return c
}

func TestSearchDecodesFirstPage(t *testing.T) {
	var gotQuery string
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != SearchPath {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("user agent header not set")
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(pageZero))
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv.URL).Search(context.Background(), SearchParams{Text: "golang developer", PerPage: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if requests != 1 {
		t.Fatalf("expected a single request, got %d", requests)
	}
	if gotQuery != "per_page=5&text=golang+developer" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if vacancies.Len() != 2 {
		t.Fatalf("expected 2 vacancies, got %d", vacancies.Len())
	}

	first := vacancies.Items[0]
	if first.Employer.ID != "77" {
		t.Fatalf("expected numeric employer id to be decoded as string, got %q", first.Employer.ID)
	}
	if !first.IsRemote() {
		t.Fatalf("expected remote schedule")
	}
	if got := first.SalaryString(); got != "200000-300000 RUR" {
		t.Fatalf("unexpected salary %q", got)
	}
	if got := first.Summary(); got != "Build services Experience with Go" {
		t.Fatalf("unexpected summary %q", got)
	}

	second := vacancies.Items[1]
	if second.Salary != nil || second.SalaryString() != "" {
		t.Fatalf("expected absent salary, got %+v", second.Salary)
	}
}

func TestSearchFollowsPagesUpToMaxPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(pageOne))
			return
		}
		w.Write([]byte(pageZero))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.MaxPages = 5

	vacancies, err := c.Search(context.Background(), SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if vacancies.Len() != 3 {
		t.Fatalf("expected 3 vacancies across pages, got %d", vacancies.Len())
	}
	if vacancies.Items[2].ID != "103" {
		t.Fatalf("unexpected last vacancy %q", vacancies.Items[2].ID)
	}
}

func TestSearchHandlesGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(pageOne))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv.URL).Search(context.Background(), SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if vacancies.Len() != 1 || vacancies.Items[0].Employer.Name != "Initech" {
		t.Fatalf("unexpected vacancies: %+v", vacancies.Items)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bad status", status: http.StatusForbidden, body: `{}`, wantErr: listing.ErrSourceUnavailable},
		{name: "not json", status: http.StatusOK, body: `<html></html>`, wantErr: listing.ErrParseMismatch},
		{name: "no items", status: http.StatusOK, body: `{"found": 0}`, wantErr: listing.ErrParseMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Search(context.Background(), SearchParams{Text: "go"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Search(context.Background(), SearchParams{Text: "go"})
	if !errors.Is(err, listing.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestBuildParams(t *testing.T) {
	q := buildParams(SearchParams{
		Text:      "go",
		Areas:     []int{1, 2},
		Schedules: []string{"remote"},
		PerPage:   20,
	})

	want := map[string][]string{
		"text":     {"go"},
		"area":     {"1", "2"},
		"schedule": {"remote"},
		"per_page": {"20"},
	}
	if !reflect.DeepEqual(map[string][]string(q), want) {
		t.Fatalf("unexpected params: %v", q)
	}
}

func TestSalaryString(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{from: 100, to: 200, want: "100-200 USD"},
		{from: 100, want: "from 100 USD"},
		{to: 200, want: "up to 200 USD"},
		{want: ""},
	}

	for _, tt := range tests {
		v := &Vacancy{}
		v.Salary = &struct {
			From     int    `json:"from,omitempty"`
			To       int    `json:"to,omitempty"`
			Currency string `json:"currency,omitempty"`
		}{From: tt.from, To: tt.to, Currency: "USD"}
		if got := v.SalaryString(); got != tt.want {
			t.Fatalf("SalaryString(%d, %d) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}
