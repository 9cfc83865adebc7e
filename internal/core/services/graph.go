package services

import (
	"context"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

// LinkedNode pairs a neighbour node with the link that reaches it.
type LinkedNode struct {
	Link *domain.Link `json:"link"`
	Node *domain.Node `json:"node"`
}

type GraphService struct {
	repo ports.NodeRepository
}

func NewGraphService(repo ports.NodeRepository) *GraphService {
	return &GraphService{repo: repo}
}

// Inputs returns the nodes feeding into a node, with the labels they arrive
// on.
func (s *GraphService) Inputs(ctx context.Context, id uuid.UUID, filter ports.LinkFilter) ([]LinkedNode, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	links, err := s.repo.IncomingLinks(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, links, func(l *domain.Link) uuid.UUID { return l.SourceID })
}

// Outputs returns the nodes a node feeds into.
func (s *GraphService) Outputs(ctx context.Context, id uuid.UUID, filter ports.LinkFilter) ([]LinkedNode, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	links, err := s.repo.OutgoingLinks(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, links, func(l *domain.Link) uuid.UUID { return l.TargetID })
}

func (s *GraphService) resolve(ctx context.Context, links []*domain.Link, pick func(*domain.Link) uuid.UUID) ([]LinkedNode, error) {
	out := make([]LinkedNode, 0, len(links))
	for _, l := range links {
		node, err := s.repo.GetByID(ctx, pick(l))
		if err != nil {
			return nil, err
		}
		out = append(out, LinkedNode{Link: l, Node: node})
	}
	return out, nil
}

func (s *GraphService) Ancestors(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return s.repo.Ancestors(ctx, id, maxDepth)
}

func (s *GraphService) Descendants(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return s.repo.Descendants(ctx, id, maxDepth)
}
