package handlers

import (
	"net/http"
	"strconv"

	"provenance-workflow-service/internal/adapters/primary/http/dto"
	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListCalcJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.CalcJobListFilter{
		State:  c.Query("state"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("computer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid computer_id"})
			return
		}
		filter.ComputerID = id
	}
	if raw := c.Query("code_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code_id"})
			return
		}
		filter.CodeID = id
	}

	jobs, total, err := h.calcJobSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list calc jobs failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListCalcJobsResponse{
		Items:      jobs,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(jobs),
	})
}

func (h *Handler) CreateCalcJob(c *gin.Context) {
	var req dto.CreateCalcJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.calcJobSvc.Create(c.Request.Context(), req.CodeID,
		req.Label, req.Description, req.Queue,
		req.Resources.ToDomain(), req.Parameters, req.InputNodes)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) GetCalcJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.calcJobSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// SubmitCalcJob hands the job to the scheduler. With ?dry_run=true the
// rendered submission manifest is returned and the job stays in NEW.
func (h *Handler) SubmitCalcJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dryRun, _ := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))

	job, manifest, err := h.calcJobSvc.Submit(c.Request.Context(), id, dryRun)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SubmitCalcJobResponse{Job: job, Manifest: manifest})
}

func (h *Handler) RefreshCalcJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.calcJobSvc.RefreshState(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) TransitionCalcJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.TransitionCalcJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.calcJobSvc.Transition(c.Request.Context(), id,
		domain.CalcJobState(req.State), req.ExitStatus, req.Message)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) KillCalcJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.calcJobSvc.Kill(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) RecordCalcJobOutput(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.RecordOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.calcJobSvc.RecordOutput(c.Request.Context(), id, req.Label, req.Attributes)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}
