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

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ListNodes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.NodeListFilter{
		Type:   c.Query("type"),
		Label:  c.Query("label"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("sealed"); v != "" {
		sealed := v == "true"
		filter.Sealed = &sealed
	}

	nodes, total, err := h.nodeSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list nodes failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListNodesResponse{
		Items:      nodes,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(nodes),
	})
}

func (h *Handler) CreateNode(c *gin.Context) {
	var req dto.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.nodeSvc.Create(c.Request.Context(), req.Type, req.Label, req.Description, req.ComputerID, req.Attributes)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (h *Handler) GetNode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	node, err := h.nodeSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *Handler) UpdateNode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	node, err := h.nodeSvc.Update(c.Request.Context(), id, updates)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *Handler) DeleteNode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.nodeSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetNodeAttributes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.SetAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.nodeSvc.SetAttributes(c.Request.Context(), id, req.Attributes)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *Handler) SealNode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	node, err := h.nodeSvc.Seal(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *Handler) SetNodeExtra(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.SetExtraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.nodeSvc.SetExtra(c.Request.Context(), id, c.Param("key"), req.Value)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *Handler) DeleteNodeExtra(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.nodeSvc.DeleteExtra(c.Request.Context(), id, c.Param("key")); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddLink(c *gin.Context) {
	targetID, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.AddLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.nodeSvc.AddLink(c.Request.Context(), req.SourceID, targetID, req.Label, req.Type)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *Handler) RemoveLink(c *gin.Context) {
	targetID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.nodeSvc.RemoveLink(c.Request.Context(), targetID, c.Param("label")); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func linkFilterFromQuery(c *gin.Context) ports.LinkFilter {
	return ports.LinkFilter{
		Type:  domain.LinkType(c.Query("type")),
		Label: c.Query("label"),
	}
}

func (h *Handler) GetNodeInputs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	linked, err := h.graphSvc.Inputs(c.Request.Context(), id, linkFilterFromQuery(c))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": linked})
}

func (h *Handler) GetNodeOutputs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	linked, err := h.graphSvc.Outputs(c.Request.Context(), id, linkFilterFromQuery(c))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": linked})
}

func (h *Handler) GetNodeAncestors(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "10"))
	nodes, err := h.graphSvc.Ancestors(c.Request.Context(), id, depth)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nodes})
}

func (h *Handler) GetNodeDescendants(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "10"))
	nodes, err := h.graphSvc.Descendants(c.Request.Context(), id, depth)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nodes})
}

func (h *Handler) ListComments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	comments, err := h.nodeSvc.ListComments(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": comments})
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.nodeSvc.AddComment(c.Request.Context(), id, req.UserEmail, req.Content)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.nodeSvc.UpdateComment(c.Request.Context(), commentID, req.Content); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	if err := h.nodeSvc.DeleteComment(c.Request.Context(), commentID); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
