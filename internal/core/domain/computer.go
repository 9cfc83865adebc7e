package domain

import (
	"time"

	"github.com/google/uuid"
)

type SchedulerType string

const (
	SchedulerKubernetes SchedulerType = "kubernetes"
	SchedulerSlurm      SchedulerType = "slurm"
	SchedulerPBSPro     SchedulerType = "pbspro"
	SchedulerDirect     SchedulerType = "direct"
)

var validSchedulers = map[SchedulerType]bool{
	SchedulerKubernetes: true,
	SchedulerSlurm:      true,
	SchedulerPBSPro:     true,
	SchedulerDirect:     true,
}

func ValidateSchedulerType(t SchedulerType) error {
	if !validSchedulers[t] {
		return ErrUnsupportedScheduler
	}
	return nil
}

// Computer is a registered compute resource that calculation jobs can be
// submitted to.
type Computer struct {
	ID            uuid.UUID     `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Name          string        `json:"name"`
	Hostname      string        `json:"hostname"`
	Description   string        `json:"description"`
	SchedulerType SchedulerType `json:"scheduler_type"`
	WorkDir       string        `json:"work_dir"`
	Enabled       bool          `json:"enabled"`
}

// Code is an executable registered on a computer. Calc jobs reference a code
// to know what to run and where.
type Code struct {
	ID             uuid.UUID         `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	ComputerID     uuid.UUID         `json:"computer_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	ExecutablePath string            `json:"executable_path"`
	ContainerImage string            `json:"container_image"`
	InputPlugin    string            `json:"input_plugin"`
	PrependText    string            `json:"prepend_text"`
	AppendText     string            `json:"append_text"`
	Environment    map[string]string `json:"environment"`

	// Computed field
	ComputerName string `json:"computer_name,omitempty"`
}
