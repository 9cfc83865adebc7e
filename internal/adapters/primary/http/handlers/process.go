package handlers

import (
	"net/http"
	"strconv"

	"provenance-workflow-service/internal/adapters/primary/http/dto"
	ports "provenance-workflow-service/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListProcesses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.CheckpointListFilter{
		State:        c.Query("state"),
		ProcessLabel: c.Query("process_label"),
		Limit:        limit,
		Offset:       offset,
	}

	checkpoints, total, err := h.processSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list processes failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListCheckpointsResponse{
		Items:      checkpoints,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(checkpoints),
	})
}

func (h *Handler) CreateProcess(c *gin.Context) {
	var req dto.CreateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.processSvc.Create(c.Request.Context(), req.ProcessLabel,
		req.Spec.ToDomain(), req.Inputs, req.ParentID, req.ChildLabel)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func (h *Handler) ListResumableProcesses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	checkpoints, err := h.processSvc.ListResumable(c.Request.Context(), limit)
	if err != nil {
		log.WithError(err).Error("list resumable processes failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListCheckpointsResponse{
		Items:    checkpoints,
		Total:    len(checkpoints),
		PageSize: limit,
	})
}

func (h *Handler) GetProcess(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cp, err := h.processSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handler) StartProcess(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cp, err := h.processSvc.Start(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handler) SaveProcessState(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.SaveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.processSvc.SaveState(c.Request.Context(), id, req.InstanceState)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handler) BufferProcessInput(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.BufferInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.processSvc.BufferInput(c.Request.Context(), id, req.Link, req.Value)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handler) ConsumeProcessInput(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.ConsumeInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value, err := h.processSvc.ConsumeInput(c.Request.Context(), id, req.Link)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": req.Link, "value": value})
}

func (h *Handler) WaitProcess(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.WaitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.processSvc.Wait(c.Request.Context(), id, req.CalcJobID, req.CallbackName)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handler) ResumeProcess(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cp, callback, err := h.processSvc.Resume(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResumeProcessResponse{Checkpoint: cp, Callback: callback})
}

func (h *Handler) EmitProcessOutput(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.EmitOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.processSvc.EmitOutput(c.Request.Context(), id, req.Port, req.Attributes)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (h *Handler) ReturnProcessOutput(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.ReturnOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.processSvc.ReturnOutput(c.Request.Context(), id, req.Port, req.NodeID); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) FinishProcess(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cp, err := h.processSvc.Finish(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handler) FailProcess(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.FailProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.processSvc.Fail(c.Request.Context(), id, req.Reason)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}
