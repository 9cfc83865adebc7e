package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

// MockNodeRepo is a mock of NodeRepository.
type MockNodeRepo struct {
	mock.Mock
}

func (m *MockNodeRepo) Create(ctx context.Context, node *domain.Node) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockNodeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockNodeRepo) List(ctx context.Context, filter ports.NodeListFilter) ([]*domain.Node, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Node), args.Int(1), args.Error(2)
}

func (m *MockNodeRepo) Update(ctx context.Context, node *domain.Node) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockNodeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNodeRepo) SetAttributes(ctx context.Context, id uuid.UUID, attributes map[string]interface{}) error {
	args := m.Called(ctx, id, attributes)
	return args.Error(0)
}

func (m *MockNodeRepo) SetExtra(ctx context.Context, id uuid.UUID, key string, value interface{}) error {
	args := m.Called(ctx, id, key, value)
	return args.Error(0)
}

func (m *MockNodeRepo) DeleteExtra(ctx context.Context, id uuid.UUID, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockNodeRepo) Seal(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNodeRepo) AddLink(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockNodeRepo) RemoveLink(ctx context.Context, targetID uuid.UUID, label string) error {
	args := m.Called(ctx, targetID, label)
	return args.Error(0)
}

func (m *MockNodeRepo) IncomingLinks(ctx context.Context, targetID uuid.UUID, filter ports.LinkFilter) ([]*domain.Link, error) {
	args := m.Called(ctx, targetID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockNodeRepo) OutgoingLinks(ctx context.Context, sourceID uuid.UUID, filter ports.LinkFilter) ([]*domain.Link, error) {
	args := m.Called(ctx, sourceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockNodeRepo) HasPath(ctx context.Context, from uuid.UUID, to uuid.UUID) (bool, error) {
	args := m.Called(ctx, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockNodeRepo) Ancestors(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error) {
	args := m.Called(ctx, id, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Node), args.Error(1)
}

func (m *MockNodeRepo) Descendants(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error) {
	args := m.Called(ctx, id, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Node), args.Error(1)
}

// MockCommentRepo is a mock of CommentRepository.
type MockCommentRepo struct {
	mock.Mock
}

func (m *MockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepo) ListByNode(ctx context.Context, nodeID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentRepo) Update(ctx context.Context, id int64, content string) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

func (m *MockCommentRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockComputerRepo is a mock of ComputerRepository.
type MockComputerRepo struct {
	mock.Mock
}

func (m *MockComputerRepo) Create(ctx context.Context, computer *domain.Computer) error {
	args := m.Called(ctx, computer)
	return args.Error(0)
}

func (m *MockComputerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Computer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Computer), args.Error(1)
}

func (m *MockComputerRepo) GetByName(ctx context.Context, name string) (*domain.Computer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Computer), args.Error(1)
}

func (m *MockComputerRepo) List(ctx context.Context, limit, offset int) ([]*domain.Computer, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Computer), args.Int(1), args.Error(2)
}

func (m *MockComputerRepo) Update(ctx context.Context, computer *domain.Computer) error {
	args := m.Called(ctx, computer)
	return args.Error(0)
}

func (m *MockComputerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockComputerRepo) CountCodes(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockCodeRepo is a mock of CodeRepository.
type MockCodeRepo struct {
	mock.Mock
}

func (m *MockCodeRepo) Create(ctx context.Context, code *domain.Code) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Code, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Code), args.Error(1)
}

func (m *MockCodeRepo) GetByLabel(ctx context.Context, computerName, codeName string) (*domain.Code, error) {
	args := m.Called(ctx, computerName, codeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Code), args.Error(1)
}

func (m *MockCodeRepo) List(ctx context.Context, computerID uuid.UUID, limit, offset int) ([]*domain.Code, int, error) {
	args := m.Called(ctx, computerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Code), args.Int(1), args.Error(2)
}

func (m *MockCodeRepo) Update(ctx context.Context, code *domain.Code) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCalcJobRepo is a mock of CalcJobRepository.
type MockCalcJobRepo struct {
	mock.Mock
}

func (m *MockCalcJobRepo) Create(ctx context.Context, job *domain.CalcJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockCalcJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CalcJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalcJob), args.Error(1)
}

func (m *MockCalcJobRepo) GetByNodeID(ctx context.Context, nodeID uuid.UUID) (*domain.CalcJob, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalcJob), args.Error(1)
}

func (m *MockCalcJobRepo) List(ctx context.Context, filter ports.CalcJobListFilter) ([]*domain.CalcJob, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.CalcJob), args.Int(1), args.Error(2)
}

func (m *MockCalcJobRepo) Update(ctx context.Context, job *domain.CalcJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockCalcJobRepo) UpdateState(ctx context.Context, id uuid.UUID, state domain.CalcJobState, schedulerRef string, lastError string) error {
	args := m.Called(ctx, id, state, schedulerRef, lastError)
	return args.Error(0)
}

// MockCheckpointRepo is a mock of CheckpointRepository.
type MockCheckpointRepo struct {
	mock.Mock
}

func (m *MockCheckpointRepo) Create(ctx context.Context, cp *domain.ProcessCheckpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockCheckpointRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessCheckpoint), args.Error(1)
}

func (m *MockCheckpointRepo) GetByNodeID(ctx context.Context, nodeID uuid.UUID) (*domain.ProcessCheckpoint, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessCheckpoint), args.Error(1)
}

func (m *MockCheckpointRepo) List(ctx context.Context, filter ports.CheckpointListFilter) ([]*domain.ProcessCheckpoint, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ProcessCheckpoint), args.Int(1), args.Error(2)
}

func (m *MockCheckpointRepo) Update(ctx context.Context, cp *domain.ProcessCheckpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockCheckpointRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCheckpointRepo) ListWaiting(ctx context.Context, limit int) ([]*domain.ProcessCheckpoint, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProcessCheckpoint), args.Error(1)
}

// MockSchedulerClient is a mock of SchedulerClient.
type MockSchedulerClient struct {
	mock.Mock
}

func (m *MockSchedulerClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSchedulerClient) Submit(ctx context.Context, sub ports.JobSubmission) (*ports.SubmittedJob, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SubmittedJob), args.Error(1)
}

func (m *MockSchedulerClient) Status(ctx context.Context, schedulerRef string) (*ports.JobStatus, error) {
	args := m.Called(ctx, schedulerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.JobStatus), args.Error(1)
}

func (m *MockSchedulerClient) Kill(ctx context.Context, schedulerRef string) error {
	args := m.Called(ctx, schedulerRef)
	return args.Error(0)
}

func (m *MockSchedulerClient) Render(sub ports.JobSubmission) (map[string]interface{}, error) {
	args := m.Called(sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}
