package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attunelab/attune-backend/internal/services"
)

type OverrideHandler struct {
	svc services.OverrideService
}

func NewOverrideHandler(svc services.OverrideService) *OverrideHandler {
	return &OverrideHandler{svc: svc}
}

// GET /dashboard-layout/user/:userId
func (h *OverrideHandler) GetOverride(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	row, err := h.svc.GetOverride(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"override": row})
}

// POST /dashboard-layout/user/:userId
// Full-replace upsert of the personal layout record.
func (h *OverrideHandler) UpsertOverride(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req services.OverrideFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	row, err := h.svc.UpsertOverride(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"override": row})
}

// PATCH /dashboard-layout/user/:userId/toggle
// body: { "use_personal_layout": bool }. 404 when the user never personalized.
func (h *OverrideHandler) Toggle(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req struct {
		UsePersonalLayout *bool `json:"use_personal_layout"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UsePersonalLayout == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": "use_personal_layout is required"})
		return
	}

	row, err := h.svc.Toggle(c.Request.Context(), userID, *req.UsePersonalLayout)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"override": row})
}

// PUT /dashboard-layout/user/:userId/hide-widget
// body: { "widget_id": "...", "hidden": bool, "couple_id": ... }
func (h *OverrideHandler) HideWidget(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req struct {
		WidgetID string     `json:"widget_id"`
		Hidden   *bool      `json:"hidden"`
		CoupleID *uuid.UUID `json:"couple_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Hidden == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": "widget_id and hidden are required"})
		return
	}

	coupleID := uuid.Nil
	if req.CoupleID != nil {
		coupleID = *req.CoupleID
	}
	row, err := h.svc.SetHidden(c.Request.Context(), userID, req.WidgetID, *req.Hidden, coupleID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"override": row})
}

// DELETE /dashboard-layout/user/:userId
func (h *OverrideHandler) Reset(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.svc.Reset(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
}
