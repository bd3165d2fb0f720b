package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/services"
)

type DashboardHandler struct {
	svc services.DashboardService
	cat *catalog.Catalog
}

func NewDashboardHandler(svc services.DashboardService, cat *catalog.Catalog) *DashboardHandler {
	return &DashboardHandler{svc: svc, cat: cat}
}

// GET /dashboard-layout/user/:userId/resolved
// The fully resolved, ordered, visible widget list for one viewer.
func (h *DashboardHandler) GetResolved(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	widgets, err := h.svc.ResolveForViewer(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"widgets": widgets})
}

// GET /dashboard-layout/catalog
func (h *DashboardHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"widgets": h.cat.Widgets()})
}
