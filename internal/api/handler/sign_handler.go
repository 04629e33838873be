package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parkingpal/internal/api/middleware"
	"parkingpal/internal/domain"
	"parkingpal/internal/repository"
	"parkingpal/internal/service"
)

type SignHandler struct {
	signService *service.SignService
}

func NewSignHandler(signService *service.SignService) *SignHandler {
	return &SignHandler{signService: signService}
}

// POST /api/v1/signs/analyze
func (h *SignHandler) AnalyzeSign(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	var dto domain.AnalyzeSignDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	result, err := h.signService.AnalyzeSign(c.Request.Context(), userID, dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidImageData):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image data"})
		case errors.Is(err, service.ErrImageUnreadable):
			// OCR failure is reported upstream; the verdict engine is
			// never invoked for an unreadable image.
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not process the image", "details": err.Error()})
		default:
			log.Printf("SignHandler: analyze failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process parking sign"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/history
func (h *SignHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	entries, err := h.signService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		log.Printf("SignHandler: history lookup failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve parking history"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /api/v1/history/recent
func (h *SignHandler) GetRecentHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.signService.GetRecentHistory(c.Request.Context(), limit)
	if err != nil {
		log.Printf("SignHandler: recent history lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve recent history"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GET /api/v1/signs/:id
func (h *SignHandler) GetSign(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sign id"})
		return
	}

	sign, err := h.signService.GetSign(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve sign"})
		return
	}
	c.JSON(http.StatusOK, sign)
}
