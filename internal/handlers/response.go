package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/attunelab/attune-backend/internal/apierr"
)

// fail maps a service error onto the wire taxonomy: {"error": code, "detail": msg}.
func fail(c *gin.Context, err error) {
	c.JSON(apierr.Status(err), gin.H{"error": apierr.Code(err), "detail": err.Error()})
}
