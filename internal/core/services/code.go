package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

type CodeService struct {
	repo         ports.CodeRepository
	computerRepo ports.ComputerRepository
}

func NewCodeService(repo ports.CodeRepository, computerRepo ports.ComputerRepository) *CodeService {
	return &CodeService{repo: repo, computerRepo: computerRepo}
}

func (s *CodeService) Create(ctx context.Context, computerID uuid.UUID, name, description, executablePath, containerImage, inputPlugin, prependText, appendText string, environment map[string]string) (*domain.Code, error) {
	if name == "" {
		return nil, domain.ErrInvalidCodeName
	}
	if executablePath == "" && containerImage == "" {
		return nil, domain.ErrInvalidExecutable
	}

	// Codes can only be registered on an existing computer.
	computer, err := s.computerRepo.GetByID(ctx, computerID)
	if err != nil {
		return nil, err
	}

	if environment == nil {
		environment = make(map[string]string)
	}

	now := time.Now()
	code := &domain.Code{
		ID:             uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
		ComputerID:     computerID,
		Name:           name,
		Description:    description,
		ExecutablePath: executablePath,
		ContainerImage: containerImage,
		InputPlugin:    inputPlugin,
		PrependText:    prependText,
		AppendText:     appendText,
		Environment:    environment,
		ComputerName:   computer.Name,
	}
	if err := s.repo.Create(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

func (s *CodeService) Get(ctx context.Context, id uuid.UUID) (*domain.Code, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByLabel resolves the "code@computer" form used from the CLI and from
// submission scripts.
func (s *CodeService) GetByLabel(ctx context.Context, computerName, codeName string) (*domain.Code, error) {
	return s.repo.GetByLabel(ctx, computerName, codeName)
}

func (s *CodeService) List(ctx context.Context, computerID uuid.UUID, limit, offset int) ([]*domain.Code, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, computerID, limit, offset)
}

func (s *CodeService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Code, error) {
	code, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok := updates["description"]; ok && v != nil {
		code.Description, _ = v.(string)
	}
	if v, ok := updates["executable_path"]; ok && v != nil {
		code.ExecutablePath, _ = v.(string)
	}
	if v, ok := updates["container_image"]; ok && v != nil {
		code.ContainerImage, _ = v.(string)
	}
	if v, ok := updates["prepend_text"]; ok && v != nil {
		code.PrependText, _ = v.(string)
	}
	if v, ok := updates["append_text"]; ok && v != nil {
		code.AppendText, _ = v.(string)
	}
	if code.ExecutablePath == "" && code.ContainerImage == "" {
		return nil, domain.ErrInvalidExecutable
	}

	if err := s.repo.Update(ctx, code); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *CodeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
