package ports

import (
	"context"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
)

type NodeListFilter struct {
	Type   string
	Label  string
	Sealed *bool
	SortBy string
	Order  string
	Limit  int
	Offset int
}

type LinkFilter struct {
	Type  domain.LinkType
	Label string
}

type CalcJobListFilter struct {
	State      string
	ComputerID uuid.UUID
	CodeID     uuid.UUID
	Limit      int
	Offset     int
}

type CheckpointListFilter struct {
	State        string
	ProcessLabel string
	Limit        int
	Offset       int
}

type NodeRepository interface {
	Create(ctx context.Context, node *domain.Node) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Node, error)
	List(ctx context.Context, filter NodeListFilter) ([]*domain.Node, int, error)
	Update(ctx context.Context, node *domain.Node) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SetAttributes replaces the attribute document and bumps the node
	// version. The caller is responsible for the sealed check.
	SetAttributes(ctx context.Context, id uuid.UUID, attributes map[string]interface{}) error
	SetExtra(ctx context.Context, id uuid.UUID, key string, value interface{}) error
	DeleteExtra(ctx context.Context, id uuid.UUID, key string) error
	Seal(ctx context.Context, id uuid.UUID) error

	AddLink(ctx context.Context, link *domain.Link) error
	RemoveLink(ctx context.Context, targetID uuid.UUID, label string) error
	IncomingLinks(ctx context.Context, targetID uuid.UUID, filter LinkFilter) ([]*domain.Link, error)
	OutgoingLinks(ctx context.Context, sourceID uuid.UUID, filter LinkFilter) ([]*domain.Link, error)

	// HasPath reports whether the provenance graph contains a directed
	// walk from one node to another over INPUT and CREATE links.
	HasPath(ctx context.Context, from uuid.UUID, to uuid.UUID) (bool, error)
	Ancestors(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error)
	Descendants(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByNode(ctx context.Context, nodeID uuid.UUID) ([]*domain.Comment, error)
	Update(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}

type ComputerRepository interface {
	Create(ctx context.Context, computer *domain.Computer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Computer, error)
	GetByName(ctx context.Context, name string) (*domain.Computer, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Computer, int, error)
	Update(ctx context.Context, computer *domain.Computer) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountCodes(ctx context.Context, id uuid.UUID) (int, error)
}

type CodeRepository interface {
	Create(ctx context.Context, code *domain.Code) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Code, error)
	GetByLabel(ctx context.Context, computerName, codeName string) (*domain.Code, error)
	List(ctx context.Context, computerID uuid.UUID, limit, offset int) ([]*domain.Code, int, error)
	Update(ctx context.Context, code *domain.Code) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CalcJobRepository interface {
	Create(ctx context.Context, job *domain.CalcJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CalcJob, error)
	GetByNodeID(ctx context.Context, nodeID uuid.UUID) (*domain.CalcJob, error)
	List(ctx context.Context, filter CalcJobListFilter) ([]*domain.CalcJob, int, error)
	Update(ctx context.Context, job *domain.CalcJob) error

	// UpdateState persists a transition that the service layer has already
	// validated against the legal-transition table.
	UpdateState(ctx context.Context, id uuid.UUID, state domain.CalcJobState, schedulerRef string, lastError string) error
}

type CheckpointRepository interface {
	Create(ctx context.Context, cp *domain.ProcessCheckpoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, error)
	GetByNodeID(ctx context.Context, nodeID uuid.UUID) (*domain.ProcessCheckpoint, error)
	List(ctx context.Context, filter CheckpointListFilter) ([]*domain.ProcessCheckpoint, int, error)
	Update(ctx context.Context, cp *domain.ProcessCheckpoint) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListWaiting returns checkpoints in the WAITING state that carry an
	// unsatisfied wait-on, for the engine poller.
	ListWaiting(ctx context.Context, limit int) ([]*domain.ProcessCheckpoint, error)
}
