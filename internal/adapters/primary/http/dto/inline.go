package dto

import "github.com/google/uuid"

type RunInlineRequest struct {
	Function string               `json:"function" binding:"required"`
	Inputs   map[string]uuid.UUID `json:"inputs"`
	Store    bool                 `json:"store"`
}
