package dto

import "provenance-workflow-service/internal/core/domain"

type CreateComputerRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Hostname      string `json:"hostname" binding:"required"`
	Description   string `json:"description"`
	SchedulerType string `json:"scheduler_type"`
	WorkDir       string `json:"work_dir" binding:"required"`
}

type UpdateComputerRequest struct {
	Description *string `json:"description"`
	WorkDir     *string `json:"work_dir"`
	Enabled     *bool   `json:"enabled"`
}

type ListComputersResponse struct {
	Items      []*domain.Computer `json:"items"`
	Total      int                `json:"total"`
	PageSize   int                `json:"page_size"`
	NextOffset int                `json:"next_offset"`
}

type CreateCodeRequest struct {
	Name           string            `json:"name" binding:"required,max=100"`
	Description    string            `json:"description"`
	ExecutablePath string            `json:"executable_path"`
	ContainerImage string            `json:"container_image"`
	InputPlugin    string            `json:"input_plugin"`
	PrependText    string            `json:"prepend_text"`
	AppendText     string            `json:"append_text"`
	Environment    map[string]string `json:"environment"`
}

type UpdateCodeRequest struct {
	Description    *string `json:"description"`
	ExecutablePath *string `json:"executable_path"`
	ContainerImage *string `json:"container_image"`
	PrependText    *string `json:"prepend_text"`
	AppendText     *string `json:"append_text"`
}

type ListCodesResponse struct {
	Items      []*domain.Code `json:"items"`
	Total      int            `json:"total"`
	PageSize   int            `json:"page_size"`
	NextOffset int            `json:"next_offset"`
}
