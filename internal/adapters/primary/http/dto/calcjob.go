package dto

import (
	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
)

type CreateCalcJobRequest struct {
	CodeID      uuid.UUID              `json:"code_id" binding:"required"`
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Queue       string                 `json:"queue"`
	Resources   JobResourcesDTO        `json:"resources"`
	Parameters  map[string]interface{} `json:"parameters"`
	InputNodes  map[string]uuid.UUID   `json:"input_nodes"`
}

type JobResourcesDTO struct {
	NumMachines       int `json:"num_machines"`
	NumMPIProcsPerMac int `json:"num_mpiprocs_per_machine"`
	MaxWallclockSecs  int `json:"max_wallclock_seconds"`
	MaxMemoryKB       int `json:"max_memory_kb"`
}

func (r JobResourcesDTO) ToDomain() domain.JobResources {
	return domain.JobResources{
		NumMachines:       r.NumMachines,
		NumMPIProcsPerMac: r.NumMPIProcsPerMac,
		MaxWallclockSecs:  r.MaxWallclockSecs,
		MaxMemoryKB:       r.MaxMemoryKB,
	}
}

type TransitionCalcJobRequest struct {
	State      string `json:"state" binding:"required"`
	ExitStatus *int   `json:"exit_status"`
	Message    string `json:"message"`
}

type RecordOutputRequest struct {
	Label      string                 `json:"label" binding:"required"`
	Attributes map[string]interface{} `json:"attributes"`
}

type SubmitCalcJobResponse struct {
	Job      *domain.CalcJob        `json:"job"`
	Manifest map[string]interface{} `json:"manifest,omitempty"`
}

type ListCalcJobsResponse struct {
	Items      []*domain.CalcJob `json:"items"`
	Total      int               `json:"total"`
	PageSize   int               `json:"page_size"`
	NextOffset int               `json:"next_offset"`
}
