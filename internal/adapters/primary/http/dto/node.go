package dto

import (
	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
)

type CreateNodeRequest struct {
	Type        string                 `json:"type"`
	Label       string                 `json:"label" binding:"required,max=255"`
	Description string                 `json:"description"`
	ComputerID  *uuid.UUID             `json:"computer_id"`
	Attributes  map[string]interface{} `json:"attributes"`
}

type UpdateNodeRequest struct {
	Label       *string `json:"label"`
	Description *string `json:"description"`
}

type SetAttributesRequest struct {
	Attributes map[string]interface{} `json:"attributes" binding:"required"`
}

type SetExtraRequest struct {
	Value interface{} `json:"value"`
}

type AddLinkRequest struct {
	SourceID uuid.UUID `json:"source_id" binding:"required"`
	Label    string    `json:"label"`
	Type     string    `json:"type"`
}

type AddCommentRequest struct {
	UserEmail string `json:"user_email"`
	Content   string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type ListNodesResponse struct {
	Items      []*domain.Node `json:"items"`
	Total      int            `json:"total"`
	PageSize   int            `json:"page_size"`
	NextOffset int            `json:"next_offset"`
}
