package ports

import (
	"context"

	"provenance-workflow-service/internal/core/domain"
)

// JobSubmission is everything the scheduler backend needs to launch a calc
// job on the cluster.
type JobSubmission struct {
	Job      *domain.CalcJob
	Code     *domain.Code
	Computer *domain.Computer
}

// SubmittedJob is the scheduler-side handle of a submitted job.
type SubmittedJob struct {
	SchedulerRef string
}

// JobStatus is the scheduler-side view of a running job, mapped back to the
// domain state machine by the service layer.
type JobStatus struct {
	State      domain.CalcJobState
	ExitStatus *int
	Message    string
}

type SchedulerClient interface {
	IsAvailable() bool
	Submit(ctx context.Context, sub JobSubmission) (*SubmittedJob, error)
	Status(ctx context.Context, schedulerRef string) (*JobStatus, error)
	Kill(ctx context.Context, schedulerRef string) error

	// Render returns the manifest that Submit would create, for dry runs.
	Render(sub JobSubmission) (map[string]interface{}, error)
}
