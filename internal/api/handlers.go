package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/aggregator"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
)

type sourceStatus struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

type searchResponse struct {
	Query   listing.SearchQuery `json:"query"`
	Results []listing.Record    `json:"results"`
	Total   int                 `json:"total"`
	Sources []sourceStatus      `json:"sources"`
}

type rankRequest struct {
	Records []listing.Record `json:"records"`
	Profile matcher.Profile  `json:"profile"`
}

type rankResponse struct {
	Results []listing.Record `json:"results"`
}

func sourceStatuses(results []aggregator.SourceResult) []sourceStatus {
	statuses := make([]sourceStatus, 0, len(results))
	for _, r := range results {
		s := sourceStatus{Name: r.Source, Count: len(r.Records)}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(c *gin.Context) {
	query := listing.SearchQuery{
		Query:    strings.TrimSpace(c.Query("q")),
		Location: strings.TrimSpace(c.Query("location")),
	}
	if query.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		query.Limit = limit
	}

	profile := matcher.Profile{
		Skills:       c.Query("skills"),
		DesiredTitle: c.Query("title"),
	}

	res, err := h.runner.Run(c.Request.Context(), query, profile, nil)
	if err != nil {
		if errors.Is(err, listing.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	results := res.Listings.Items
	if results == nil {
		results = []listing.Record{}
	}

	c.JSON(http.StatusOK, searchResponse{
		Query:   res.Query,
		Results: results,
		Total:   len(results),
		Sources: sourceStatuses(res.Sources),
	})
}

// Detail handles GET /api/v1/detail.
func (h *Handler) Detail(c *gin.Context) {
	listingURL := strings.TrimSpace(c.Query("url"))
	if listingURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter url is required"})
		return
	}

	d, err := h.details.Fetch(c.Request.Context(), listingURL)
	if err != nil || d == nil {
		msg := "detail not available"
		if err != nil {
			msg = err.Error()
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, d)
}

// Rank handles POST /api/v1/rank.
func (h *Handler) Rank(c *gin.Context) {
	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, rankResponse{Results: h.ranker.Rank(req.Records, req.Profile)})
}
