package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

type ComputerService struct {
	repo ports.ComputerRepository
}

func NewComputerService(repo ports.ComputerRepository) *ComputerService {
	return &ComputerService{repo: repo}
}

func (s *ComputerService) Create(ctx context.Context, name, hostname, description, schedulerType, workDir string) (*domain.Computer, error) {
	if name == "" {
		return nil, domain.ErrInvalidComputerName
	}
	if hostname == "" {
		return nil, domain.ErrInvalidHostname
	}
	if workDir == "" {
		return nil, domain.ErrInvalidWorkDir
	}

	st := domain.SchedulerType(schedulerType)
	if st == "" {
		st = domain.SchedulerKubernetes
	}
	if err := domain.ValidateSchedulerType(st); err != nil {
		return nil, err
	}

	now := time.Now()
	computer := &domain.Computer{
		ID:            uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Name:          name,
		Hostname:      hostname,
		Description:   description,
		SchedulerType: st,
		WorkDir:       workDir,
		Enabled:       true,
	}
	if err := s.repo.Create(ctx, computer); err != nil {
		return nil, err
	}
	return computer, nil
}

func (s *ComputerService) Get(ctx context.Context, id uuid.UUID) (*domain.Computer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ComputerService) GetByName(ctx context.Context, name string) (*domain.Computer, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *ComputerService) List(ctx context.Context, limit, offset int) ([]*domain.Computer, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *ComputerService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Computer, error) {
	computer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok := updates["description"]; ok && v != nil {
		computer.Description, _ = v.(string)
	}
	if v, ok := updates["work_dir"]; ok && v != nil {
		workDir, _ := v.(string)
		if workDir == "" {
			return nil, domain.ErrInvalidWorkDir
		}
		computer.WorkDir = workDir
	}
	if v, ok := updates["enabled"]; ok && v != nil {
		enabled, _ := v.(bool)
		computer.Enabled = enabled
	}

	if err := s.repo.Update(ctx, computer); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ComputerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountCodes(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrComputerHasCodes
	}
	return s.repo.Delete(ctx, id)
}
