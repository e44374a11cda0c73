package headhunter

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "jobhound/1.0 (+https://github.com/spigell/jobhound)"
	// Max value for search per page.
	maxPerPage = 100
)

// Client talks to the public (anonymous) part of the HeadHunter API.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// MaxPages bounds the number of page requests made for a single search.
	MaxPages int
}

func New(httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return &Client{
		APIURL:     apiURL,
		HTTPClient: httpClient,
		logger:     logger.With(zap.String("client", "headhunter")),
		UserAgent:  userAgent,
		MaxPages:   1,
	}
}
