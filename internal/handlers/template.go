package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attunelab/attune-backend/internal/requestdata"
	"github.com/attunelab/attune-backend/internal/services"
)

type TemplateHandler struct {
	svc services.TemplateService
}

func NewTemplateHandler(svc services.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// GET /dashboard-layout/templates/therapist/:therapistId
func (h *TemplateHandler) ListForTherapist(c *gin.Context) {
	therapistID, err := uuid.Parse(c.Param("therapistId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid therapist id"})
		return
	}

	templates, err := h.svc.ListFor(c.Request.Context(), therapistID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// POST /dashboard-layout/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req services.TemplateFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	tpl, err := h.svc.Create(c.Request.Context(), therapistFrom(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": tpl})
}

// PUT /dashboard-layout/templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var req services.TemplateFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	tpl, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

// DELETE /dashboard-layout/templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// POST /dashboard-layout/templates/:id/apply/:coupleId
func (h *TemplateHandler) ApplyToCouple(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}
	coupleID, err := uuid.Parse(c.Param("coupleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid couple id"})
		return
	}

	row, err := h.svc.ApplyTo(c.Request.Context(), id, coupleID, therapistFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": row})
}

// POST /dashboard-layout/templates/copy/:sourceCoupleId/to/:targetCoupleId
func (h *TemplateHandler) CopyBetweenCouples(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("sourceCoupleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source couple id"})
		return
	}
	targetID, err := uuid.Parse(c.Param("targetCoupleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target couple id"})
		return
	}

	row, err := h.svc.CopyTo(c.Request.Context(), sourceID, targetID, therapistFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": row})
}

func therapistFrom(c *gin.Context) uuid.UUID {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		return uuid.Nil
	}
	return rd.TherapistID
}
