package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attunelab/attune-backend/internal/services"
)

type CoupleLayoutHandler struct {
	svc services.CoupleLayoutService
}

func NewCoupleLayoutHandler(svc services.CoupleLayoutService) *CoupleLayoutHandler {
	return &CoupleLayoutHandler{svc: svc}
}

// GET /dashboard-layout/couple/:coupleId
func (h *CoupleLayoutHandler) GetCoupleLayout(c *gin.Context) {
	coupleID, err := uuid.Parse(c.Param("coupleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid couple id"})
		return
	}

	row, err := h.svc.GetCoupleLayout(c.Request.Context(), coupleID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": row})
}

// POST /dashboard-layout/couple/:coupleId
// body: { "therapist_id": ..., "widget_order": [...], "enabled_widgets": {...},
//
//	"widget_sizes": {...}, "widget_content_overrides": {...} }
func (h *CoupleLayoutHandler) UpsertCoupleLayout(c *gin.Context) {
	coupleID, err := uuid.Parse(c.Param("coupleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid couple id"})
		return
	}

	var req struct {
		TherapistID *uuid.UUID `json:"therapist_id"`
		services.LayoutFields
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	row, err := h.svc.UpsertCoupleLayout(c.Request.Context(), coupleID, req.TherapistID, req.LayoutFields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": row})
}
