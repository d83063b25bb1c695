package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stylescout/backend/internal/domain"
	"github.com/stylescout/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scans   *usecase.ScanService
	outfits *usecase.OutfitService // nil when no wardrobe backend is configured
}

// NewHandler creates a new HTTP handler
func NewHandler(scans *usecase.ScanService, outfits *usecase.OutfitService) *Handler {
	return &Handler{scans: scans, outfits: outfits}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stylescout-backend",
		"version": "1.0.0",
	})
}

// DetectProducts runs one detection+scoring pass over a submitted page snapshot
func (h *Handler) DetectProducts(c *gin.Context) {
	var snapshot domain.PageSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page snapshot"})
		return
	}

	response, err := h.scans.DetectProducts(c.Request.Context(), snapshot)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

type clearRequest struct {
	PageID string `json:"pageId"`
}

// ClearDetection drops scan state for one page, or all pages when pageId is empty
func (h *Handler) ClearDetection(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.scans.ClearDetection(req.PageID)
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

type debugRequest struct {
	Enabled bool `json:"enabled"`
}

// EnableDebugMode toggles verbose detection logging
func (h *Handler) EnableDebugMode(c *gin.Context) {
	var req debugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.scans.EnableDebugMode(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"debug": req.Enabled})
}

// GetDetectionStats reports orchestrator state for the popup/dashboard
func (h *Handler) GetDetectionStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.scans.Stats(c.Request.Context()))
}

// UpdateFilterState validates and persists a new overlay filter state
func (h *Handler) UpdateFilterState(c *gin.Context) {
	var state domain.FilterState
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter state body"})
		return
	}

	if err := h.scans.UpdateFilterState(state); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// ApplyPrompt stores a free-text prompt and activates prompt ranking
func (h *Handler) ApplyPrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.scans.ApplyPrompt(req.Prompt); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": req.Prompt})
}

// SwitchToStyleMode activates style-profile ranking
func (h *Handler) SwitchToStyleMode(c *gin.Context) {
	if err := h.scans.SwitchToStyleMode(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankingMode": domain.RankingModeStyle})
}

// DisableExtension stops scanning and tears down analysis state
func (h *Handler) DisableExtension(c *gin.Context) {
	h.scans.DisableExtension()
	c.JSON(http.StatusOK, gin.H{"disabled": true})
}

// MatchWardrobe returns the wardrobe shortlist for a detected product
func (h *Handler) MatchWardrobe(c *gin.Context) {
	if h.outfits == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "wardrobe matching is not configured on this server",
		})
		return
	}

	var product domain.ProductSummary
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product body"})
		return
	}

	response, err := h.outfits.MatchProduct(c.Request.Context(), product)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// writeError maps domain errors to HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidFilterState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWardrobeUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
