package handlers

import (
	"net/http"

	"provenance-workflow-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListInlineFunctions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"functions": h.inlineSvc.Registered()})
}

func (h *Handler) RunInline(c *gin.Context) {
	var req dto.RunInlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.inlineSvc.Run(c.Request.Context(), req.Function, req.Inputs, req.Store)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
