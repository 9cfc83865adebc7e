package handlers

import (
	"net/http"
	"strconv"

	"provenance-workflow-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListComputers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	computers, total, err := h.computerSvc.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.WithError(err).Error("list computers failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListComputersResponse{
		Items:      computers,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(computers),
	})
}

func (h *Handler) CreateComputer(c *gin.Context) {
	var req dto.CreateComputerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	computer, err := h.computerSvc.Create(c.Request.Context(),
		req.Name, req.Hostname, req.Description, req.SchedulerType, req.WorkDir)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, computer)
}

func (h *Handler) GetComputer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	computer, err := h.computerSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, computer)
}

func (h *Handler) UpdateComputer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateComputerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.WorkDir != nil {
		updates["work_dir"] = *req.WorkDir
	}
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}

	computer, err := h.computerSvc.Update(c.Request.Context(), id, updates)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, computer)
}

func (h *Handler) DeleteComputer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.computerSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListComputerCodes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	codes, total, err := h.codeSvc.List(c.Request.Context(), id, limit, offset)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListCodesResponse{
		Items:      codes,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(codes),
	})
}

func (h *Handler) CreateCode(c *gin.Context) {
	computerID, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.CreateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.codeSvc.Create(c.Request.Context(), computerID,
		req.Name, req.Description, req.ExecutablePath, req.ContainerImage,
		req.InputPlugin, req.PrependText, req.AppendText, req.Environment)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *Handler) ListCodes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	codes, total, err := h.codeSvc.List(c.Request.Context(), uuid.Nil, limit, offset)
	if err != nil {
		log.WithError(err).Error("list codes failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListCodesResponse{
		Items:      codes,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(codes),
	})
}

// LookupCode resolves ?computer=<name>&name=<code> the way submission
// scripts reference a code as "code@computer".
func (h *Handler) LookupCode(c *gin.Context) {
	code, err := h.codeSvc.GetByLabel(c.Request.Context(), c.Query("computer"), c.Query("name"))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *Handler) GetCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	code, err := h.codeSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *Handler) UpdateCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ExecutablePath != nil {
		updates["executable_path"] = *req.ExecutablePath
	}
	if req.ContainerImage != nil {
		updates["container_image"] = *req.ContainerImage
	}
	if req.PrependText != nil {
		updates["prepend_text"] = *req.PrependText
	}
	if req.AppendText != nil {
		updates["append_text"] = *req.AppendText
	}

	code, err := h.codeSvc.Update(c.Request.Context(), id, updates)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *Handler) DeleteCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.codeSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
