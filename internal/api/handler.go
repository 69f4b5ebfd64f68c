// Package api exposes the scraper over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/finikeen/recipes-app/internal/ingredient"
	"github.com/finikeen/recipes-app/internal/scrape"
)

// Scraper defines the scrape operation the handlers depend on.
type Scraper interface {
	Scrape(ctx context.Context, url string) (scrape.Result, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Scraper Scraper
}

// NewHandler creates a new Handler.
func NewHandler(s Scraper) *Handler {
	return &Handler{Scraper: s}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type parseRequest struct {
	Lines []string `json:"lines"`
}

type parseResponse struct {
	Ingredients []ingredient.Parsed `json:"ingredients"`
}

// Scrape handles POST /api/scrape. A missing URL is a 400; every other
// outcome, failed or not, is a 200 carrying a scrape.Result.
func (h *Handler) Scrape(c *gin.Context) {
	var req scrapeRequest
	// A malformed body is treated like a missing url.
	_ = c.ShouldBindJSON(&req)

	res, err := h.Scraper.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, scrape.ErrURLRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Warn().Err(err).Str("url", req.URL).Msg("scrape error")
		c.JSON(http.StatusOK, scrape.Result{FailureReason: scrape.ReasonNoRecipe})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ParseIngredients handles POST /api/ingredients/parse for lines typed by a user.
func (h *Handler) ParseIngredients(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, parseResponse{Ingredients: ingredient.ParseAll(req.Lines)})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
