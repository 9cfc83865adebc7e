package dto

import (
	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
)

type PortSpecDTO struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

type ProcessSpecDTO struct {
	Inputs         []PortSpecDTO `json:"inputs"`
	Outputs        []PortSpecDTO `json:"outputs"`
	DynamicInputs  bool          `json:"dynamic_inputs"`
	DynamicOutputs bool          `json:"dynamic_outputs"`
}

func (s ProcessSpecDTO) ToDomain() domain.ProcessSpec {
	spec := domain.ProcessSpec{
		DynamicInputs:  s.DynamicInputs,
		DynamicOutputs: s.DynamicOutputs,
	}
	for _, p := range s.Inputs {
		spec.Inputs = append(spec.Inputs, domain.PortSpec{Name: p.Name, Required: p.Required})
	}
	for _, p := range s.Outputs {
		spec.Outputs = append(spec.Outputs, domain.PortSpec{Name: p.Name, Required: p.Required})
	}
	return spec
}

type CreateProcessRequest struct {
	ProcessLabel string               `json:"process_label" binding:"required,max=255"`
	Spec         ProcessSpecDTO       `json:"spec"`
	Inputs       map[string]uuid.UUID `json:"inputs"`
	ParentID     *uuid.UUID           `json:"parent_id"`
	ChildLabel   string               `json:"child_label"`
}

type SaveStateRequest struct {
	InstanceState map[string]interface{} `json:"instance_state" binding:"required"`
}

type BufferInputRequest struct {
	Link  string      `json:"link" binding:"required"`
	Value interface{} `json:"value"`
}

type ConsumeInputRequest struct {
	Link string `json:"link" binding:"required"`
}

type WaitRequest struct {
	CalcJobID    uuid.UUID `json:"calcjob_id" binding:"required"`
	CallbackName string    `json:"callback_name" binding:"required"`
}

type EmitOutputRequest struct {
	Port       string                 `json:"port" binding:"required"`
	Attributes map[string]interface{} `json:"attributes"`
}

type ReturnOutputRequest struct {
	Port   string    `json:"port" binding:"required"`
	NodeID uuid.UUID `json:"node_id" binding:"required"`
}

type FailProcessRequest struct {
	Reason string `json:"reason"`
}

type ResumeProcessResponse struct {
	Checkpoint *domain.ProcessCheckpoint `json:"checkpoint"`
	Callback   string                    `json:"callback"`
}

type ListCheckpointsResponse struct {
	Items      []*domain.ProcessCheckpoint `json:"items"`
	Total      int                         `json:"total"`
	PageSize   int                         `json:"page_size"`
	NextOffset int                         `json:"next_offset"`
}
