package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

type CalcJobService struct {
	repo         ports.CalcJobRepository
	nodeRepo     ports.NodeRepository
	codeRepo     ports.CodeRepository
	computerRepo ports.ComputerRepository
	scheduler    ports.SchedulerClient
}

func NewCalcJobService(
	repo ports.CalcJobRepository,
	nodeRepo ports.NodeRepository,
	codeRepo ports.CodeRepository,
	computerRepo ports.ComputerRepository,
	scheduler ports.SchedulerClient,
) *CalcJobService {
	return &CalcJobService{
		repo:         repo,
		nodeRepo:     nodeRepo,
		codeRepo:     codeRepo,
		computerRepo: computerRepo,
		scheduler:    scheduler,
	}
}

// Create registers a new calculation job in the NEW state. The job gets a
// process node; the parameters document becomes a parameter data node wired
// to it with an INPUT link, and every entry of inputNodes is linked the same
// way under its label.
func (s *CalcJobService) Create(ctx context.Context, codeID uuid.UUID, label, description, queue string, resources domain.JobResources, parameters map[string]interface{}, inputNodes map[string]uuid.UUID) (*domain.CalcJob, error) {
	if resources.NumMachines < 1 {
		return nil, domain.ErrInvalidJobResources
	}

	code, err := s.codeRepo.GetByID(ctx, codeID)
	if err != nil {
		return nil, err
	}
	computer, err := s.computerRepo.GetByID(ctx, code.ComputerID)
	if err != nil {
		return nil, err
	}
	if !computer.Enabled {
		return nil, domain.ErrComputerDisabled
	}

	if parameters == nil {
		parameters = make(map[string]interface{})
	}
	if label == "" {
		label = fmt.Sprintf("%s@%s", code.Name, computer.Name)
	}

	now := time.Now()
	procNode := &domain.Node{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Type:        domain.NodeTypeCalculation,
		Label:       label,
		Description: description,
		ComputerID:  &computer.ID,
		Version:     1,
		Attributes: map[string]interface{}{
			"code":      code.Name,
			"computer":  computer.Name,
			"queue":     queue,
			"resources": resources,
		},
		Extras: make(map[string]interface{}),
	}
	if err := s.nodeRepo.Create(ctx, procNode); err != nil {
		return nil, err
	}

	paramNode := &domain.Node{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Type:       domain.NodeTypeParameter,
		Label:      label + " parameters",
		Version:    1,
		Attributes: parameters,
		Extras:     make(map[string]interface{}),
	}
	if err := s.nodeRepo.Create(ctx, paramNode); err != nil {
		return nil, err
	}
	if err := s.nodeRepo.AddLink(ctx, &domain.Link{
		SourceID:  paramNode.ID,
		TargetID:  procNode.ID,
		Label:     "parameters",
		Type:      domain.LinkTypeInput,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	for linkLabel, inputID := range inputNodes {
		if _, err := s.nodeRepo.GetByID(ctx, inputID); err != nil {
			return nil, err
		}
		if err := s.nodeRepo.AddLink(ctx, &domain.Link{
			SourceID:  inputID,
			TargetID:  procNode.ID,
			Label:     linkLabel,
			Type:      domain.LinkTypeInput,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	job := &domain.CalcJob{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		NodeID:     procNode.ID,
		CodeID:     code.ID,
		ComputerID: computer.ID,
		State:      domain.CalcJobStateNew,
		Queue:      queue,
		Resources:  resources,
		Parameters: parameters,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *CalcJobService) Get(ctx context.Context, id uuid.UUID) (*domain.CalcJob, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CalcJobService) GetByNode(ctx context.Context, nodeID uuid.UUID) (*domain.CalcJob, error) {
	return s.repo.GetByNodeID(ctx, nodeID)
}

func (s *CalcJobService) List(ctx context.Context, filter ports.CalcJobListFilter) ([]*domain.CalcJob, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// Submit hands a NEW job to the scheduler backend. With dryRun set, the
// rendered manifest is returned and nothing is stored or submitted.
func (s *CalcJobService) Submit(ctx context.Context, id uuid.UUID, dryRun bool) (*domain.CalcJob, map[string]interface{}, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if job.State != domain.CalcJobStateNew {
		return nil, nil, domain.ErrJobAlreadySubmitted
	}
	if s.scheduler == nil || !s.scheduler.IsAvailable() {
		return nil, nil, domain.ErrSchedulerNotAvailable
	}

	code, err := s.codeRepo.GetByID(ctx, job.CodeID)
	if err != nil {
		return nil, nil, err
	}
	computer, err := s.computerRepo.GetByID(ctx, job.ComputerID)
	if err != nil {
		return nil, nil, err
	}

	sub := ports.JobSubmission{Job: job, Code: code, Computer: computer}

	if dryRun {
		manifest, err := s.scheduler.Render(sub)
		if err != nil {
			return nil, nil, err
		}
		return job, manifest, nil
	}

	if err := s.repo.UpdateState(ctx, id, domain.CalcJobStateSubmitting, "", ""); err != nil {
		return nil, nil, err
	}

	submitted, err := s.scheduler.Submit(ctx, sub)
	if err != nil {
		if stErr := s.repo.UpdateState(ctx, id, domain.CalcJobStateFailed, "", err.Error()); stErr != nil {
			log.WithError(stErr).Error("record submit failure")
		}
		return nil, nil, fmt.Errorf("submit calc job: %w", err)
	}

	if err := s.repo.UpdateState(ctx, id, domain.CalcJobStateWithScheduler, submitted.SchedulerRef, ""); err != nil {
		return nil, nil, err
	}
	updated, err := s.repo.GetByID(ctx, id)
	return updated, nil, err
}

// RefreshState polls the scheduler and advances the job along the legal
// transition table. Terminal jobs are returned untouched.
func (s *CalcJobService) RefreshState(ctx context.Context, id uuid.UUID) (*domain.CalcJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.State.IsTerminal() || job.SchedulerRef == "" {
		return job, nil
	}
	if s.scheduler == nil || !s.scheduler.IsAvailable() {
		return nil, domain.ErrSchedulerNotAvailable
	}

	status, err := s.scheduler.Status(ctx, job.SchedulerRef)
	if err != nil {
		return nil, fmt.Errorf("scheduler status: %w", err)
	}
	if status.State == job.State {
		return job, nil
	}

	return s.Transition(ctx, id, status.State, status.ExitStatus, status.Message)
}

// Transition applies a validated state change. Reaching FINISHED seals the
// process node, freezing the provenance of the calculation.
func (s *CalcJobService) Transition(ctx context.Context, id uuid.UUID, next domain.CalcJobState, exitStatus *int, message string) (*domain.CalcJob, error) {
	if err := domain.ValidateCalcJobState(next); err != nil {
		return nil, err
	}

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.State.CanTransitionTo(next) {
		return nil, domain.ErrIllegalJobTransition
	}

	job.State = next
	job.ExitStatus = exitStatus
	job.LastError = message
	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	if next == domain.CalcJobStateFinished {
		if err := s.nodeRepo.Seal(ctx, job.NodeID); err != nil {
			log.WithError(err).WithField("node_id", job.NodeID).Error("seal calc node")
		}
	}
	return s.repo.GetByID(ctx, id)
}

// Kill aborts a job that is with the scheduler or running.
func (s *CalcJobService) Kill(ctx context.Context, id uuid.UUID) (*domain.CalcJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.State != domain.CalcJobStateWithScheduler && job.State != domain.CalcJobStateRunning {
		return nil, domain.ErrJobNotKillable
	}
	if s.scheduler == nil || !s.scheduler.IsAvailable() {
		return nil, domain.ErrSchedulerNotAvailable
	}

	if err := s.scheduler.Kill(ctx, job.SchedulerRef); err != nil {
		return nil, fmt.Errorf("kill calc job: %w", err)
	}
	return s.Transition(ctx, id, domain.CalcJobStateExcepted, nil, "killed by user")
}

// RecordOutput creates a data node holding the retrieved result document and
// hangs it off the calculation with a CREATE link.
func (s *CalcJobService) RecordOutput(ctx context.Context, id uuid.UUID, linkLabel string, attributes map[string]interface{}) (*domain.Node, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.State != domain.CalcJobStateRetrieving {
		return nil, domain.ErrIllegalJobTransition
	}

	if attributes == nil {
		attributes = make(map[string]interface{})
	}
	now := time.Now()
	outNode := &domain.Node{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Type:       domain.NodeTypeParameter,
		Label:      linkLabel,
		Version:    1,
		Attributes: attributes,
		Extras:     make(map[string]interface{}),
	}
	if err := s.nodeRepo.Create(ctx, outNode); err != nil {
		return nil, err
	}
	if err := s.nodeRepo.AddLink(ctx, &domain.Link{
		SourceID:  job.NodeID,
		TargetID:  outNode.ID,
		Label:     linkLabel,
		Type:      domain.LinkTypeCreate,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return outNode, nil
}
