package domain

import (
	"time"

	"github.com/google/uuid"
)

type CalcJobState string

const (
	CalcJobStateNew           CalcJobState = "NEW"
	CalcJobStateSubmitting    CalcJobState = "SUBMITTING"
	CalcJobStateWithScheduler CalcJobState = "WITHSCHEDULER"
	CalcJobStateRunning       CalcJobState = "RUNNING"
	CalcJobStateRetrieving    CalcJobState = "RETRIEVING"
	CalcJobStateFinished      CalcJobState = "FINISHED"
	CalcJobStateFailed        CalcJobState = "FAILED"
	CalcJobStateExcepted      CalcJobState = "EXCEPTED"
)

// calcJobTransitions is the legal state table. Terminal states have no
// entries: once FINISHED, FAILED or EXCEPTED a job never moves again.
var calcJobTransitions = map[CalcJobState][]CalcJobState{
	CalcJobStateNew:           {CalcJobStateSubmitting, CalcJobStateExcepted},
	CalcJobStateSubmitting:    {CalcJobStateWithScheduler, CalcJobStateFailed, CalcJobStateExcepted},
	CalcJobStateWithScheduler: {CalcJobStateRunning, CalcJobStateRetrieving, CalcJobStateFailed, CalcJobStateExcepted},
	CalcJobStateRunning:       {CalcJobStateRetrieving, CalcJobStateFailed, CalcJobStateExcepted},
	CalcJobStateRetrieving:    {CalcJobStateFinished, CalcJobStateFailed, CalcJobStateExcepted},
}

func (s CalcJobState) IsTerminal() bool {
	switch s {
	case CalcJobStateFinished, CalcJobStateFailed, CalcJobStateExcepted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s CalcJobState) CanTransitionTo(next CalcJobState) bool {
	for _, allowed := range calcJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ValidateCalcJobState(s CalcJobState) error {
	if s.IsTerminal() {
		return nil
	}
	if _, ok := calcJobTransitions[s]; !ok {
		return ErrInvalidJobState
	}
	return nil
}

// JobResources mirrors the scheduler resource request of a calc job.
type JobResources struct {
	NumMachines       int `json:"num_machines"`
	NumMPIProcsPerMac int `json:"num_mpiprocs_per_machine"`
	MaxWallclockSecs  int `json:"max_wallclock_seconds"`
	MaxMemoryKB       int `json:"max_memory_kb,omitempty"`
}

// CalcJob is the scheduler-facing side of a calculation. Its provenance
// (inputs, created outputs) hangs off the process node referenced by NodeID.
type CalcJob struct {
	ID           uuid.UUID              `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	NodeID       uuid.UUID              `json:"node_id"`
	CodeID       uuid.UUID              `json:"code_id"`
	ComputerID   uuid.UUID              `json:"computer_id"`
	State        CalcJobState           `json:"state"`
	Queue        string                 `json:"queue"`
	Resources    JobResources           `json:"resources"`
	Parameters   map[string]interface{} `json:"parameters"`
	SchedulerRef string                 `json:"scheduler_ref"`
	ExitStatus   *int                   `json:"exit_status"`
	LastError    string                 `json:"last_error"`
}
