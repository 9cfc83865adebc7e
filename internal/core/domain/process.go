package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProcessState string

const (
	ProcessStateCreated  ProcessState = "CREATED"
	ProcessStateRunning  ProcessState = "RUNNING"
	ProcessStateWaiting  ProcessState = "WAITING"
	ProcessStateReady    ProcessState = "READY"
	ProcessStateFinished ProcessState = "FINISHED"
	ProcessStateFailed   ProcessState = "FAILED"
)

func (s ProcessState) IsTerminal() bool {
	return s == ProcessStateFinished || s == ProcessStateFailed
}

// PortSpec declares a single named input or output port of a process.
type PortSpec struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// ProcessSpec declares the ports of a process. With DynamicOutputs set,
// outputs on undeclared ports are accepted; otherwise they fail the process.
type ProcessSpec struct {
	Inputs         []PortSpec `json:"inputs"`
	Outputs        []PortSpec `json:"outputs"`
	DynamicInputs  bool       `json:"dynamic_inputs"`
	DynamicOutputs bool       `json:"dynamic_outputs"`
}

func (s ProcessSpec) HasInput(name string) bool {
	for _, p := range s.Inputs {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (s ProcessSpec) HasOutput(name string) bool {
	for _, p := range s.Outputs {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ValidateInputs checks required ports are present and, unless dynamic
// inputs are allowed, that no undeclared port is used.
func (s ProcessSpec) ValidateInputs(inputs map[string]uuid.UUID) error {
	for _, p := range s.Inputs {
		if !p.Required {
			continue
		}
		if _, ok := inputs[p.Name]; !ok {
			return ErrMissingRequiredInput
		}
	}
	if s.DynamicInputs {
		return nil
	}
	for name := range inputs {
		if !s.HasInput(name) {
			return ErrUndeclaredInputPort
		}
	}
	return nil
}

// WaitOn records that a waiting process blocks on a calc job. CallbackName
// names the step to invoke once the job has left the running states.
type WaitOn struct {
	CalcJobID    uuid.UUID `json:"calcjob_id"`
	CallbackName string    `json:"callback_name"`
	Satisfied    bool      `json:"satisfied"`
}

// ProcessCheckpoint is the persisted instance state of a process, enough to
// resume it after an interruption. InstanceState is an opaque bundle owned
// by the process implementation; the input buffer keeps values received on
// links but not yet consumed by a child.
type ProcessCheckpoint struct {
	ID            uuid.UUID              `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	NodeID        uuid.UUID              `json:"node_id"`
	ProcessLabel  string                 `json:"process_label"`
	State         ProcessState           `json:"state"`
	Spec          ProcessSpec            `json:"spec"`
	InstanceState map[string]interface{} `json:"instance_state"`
	InputBuffer   map[string]interface{} `json:"input_buffer"`
	WaitOn        *WaitOn                `json:"wait_on"`
	ChildLabel    string                 `json:"child_label,omitempty"`
	ParentID      *uuid.UUID             `json:"parent_id"`
}
