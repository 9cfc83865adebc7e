package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

type NodeService struct {
	repo        ports.NodeRepository
	commentRepo ports.CommentRepository
}

func NewNodeService(repo ports.NodeRepository, commentRepo ports.CommentRepository) *NodeService {
	return &NodeService{repo: repo, commentRepo: commentRepo}
}

func (s *NodeService) Create(ctx context.Context, nodeType, label, description string, computerID *uuid.UUID, attributes map[string]interface{}) (*domain.Node, error) {
	t := domain.NodeType(nodeType)
	if t == "" {
		t = domain.NodeTypeData
	}
	if err := domain.ValidateNodeType(t); err != nil {
		return nil, err
	}
	if label == "" {
		return nil, domain.ErrInvalidNodeLabel
	}

	if attributes == nil {
		attributes = make(map[string]interface{})
	}

	now := time.Now()
	node := &domain.Node{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Type:        t,
		Label:       label,
		Description: description,
		ComputerID:  computerID,
		Sealed:      false,
		Version:     1,
		Attributes:  attributes,
		Extras:      make(map[string]interface{}),
	}

	if err := s.repo.Create(ctx, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *NodeService) Get(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *NodeService) List(ctx context.Context, filter ports.NodeListFilter) ([]*domain.Node, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

func (s *NodeService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Node, error) {
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok := updates["label"]; ok && v != nil {
		label, _ := v.(string)
		if label == "" {
			return nil, domain.ErrInvalidNodeLabel
		}
		node.Label = label
	}
	if v, ok := updates["description"]; ok && v != nil {
		node.Description, _ = v.(string)
	}

	if err := s.repo.Update(ctx, node); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *NodeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// SetAttributes replaces the attribute document of an unsealed node.
func (s *NodeService) SetAttributes(ctx context.Context, id uuid.UUID, attributes map[string]interface{}) (*domain.Node, error) {
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node.Sealed {
		return nil, domain.ErrNodeSealed
	}
	if attributes == nil {
		attributes = make(map[string]interface{})
	}
	if err := s.repo.SetAttributes(ctx, id, attributes); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// SetExtra sets a single extra on a stored node. Unlike attributes, extras
// stay writable after the node has been sealed.
func (s *NodeService) SetExtra(ctx context.Context, id uuid.UUID, key string, value interface{}) (*domain.Node, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetExtra(ctx, id, key, value); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *NodeService) DeleteExtra(ctx context.Context, id uuid.UUID, key string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteExtra(ctx, id, key)
}

// Seal freezes the attributes of a node. Sealing is idempotent.
func (s *NodeService) Seal(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node.Sealed {
		return node, nil
	}
	if err := s.repo.Seal(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// AddLink creates a directed link between two stored nodes. An empty label
// picks the first free autogenerated "link_N" label on the target. INPUT and
// CREATE links are refused when they would close a directed cycle.
func (s *NodeService) AddLink(ctx context.Context, sourceID, targetID uuid.UUID, label string, linkType string) (*domain.Link, error) {
	t := domain.LinkType(linkType)
	if t == "" {
		t = domain.LinkTypeUnspecified
	}
	if err := domain.ValidateLinkType(t); err != nil {
		return nil, err
	}
	if sourceID == targetID {
		return nil, domain.ErrSelfLink
	}

	if _, err := s.repo.GetByID(ctx, sourceID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	// Linking source->target closes a loop if a provenance walk already
	// leads from target back to source.
	if t.RequiresAcyclicity() {
		looped, err := s.repo.HasPath(ctx, targetID, sourceID)
		if err != nil {
			return nil, err
		}
		if looped {
			return nil, domain.ErrLinkWouldCreateLoop
		}
	}

	if label == "" {
		autoLabel, err := s.nextAutoLabel(ctx, targetID)
		if err != nil {
			return nil, err
		}
		label = autoLabel
	}

	link := &domain.Link{
		SourceID:  sourceID,
		TargetID:  targetID,
		Label:     label,
		Type:      t,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AddLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *NodeService) nextAutoLabel(ctx context.Context, targetID uuid.UUID) (string, error) {
	existing, err := s.repo.IncomingLinks(ctx, targetID, ports.LinkFilter{})
	if err != nil {
		return "", err
	}
	used := make(map[string]bool, len(existing))
	for _, l := range existing {
		used[l.Label] = true
	}
	for idx := 1; ; idx++ {
		candidate := fmt.Sprintf("link_%d", idx)
		if !used[candidate] {
			return candidate, nil
		}
	}
}

func (s *NodeService) RemoveLink(ctx context.Context, targetID uuid.UUID, label string) error {
	return s.repo.RemoveLink(ctx, targetID, label)
}

func (s *NodeService) AddComment(ctx context.Context, nodeID uuid.UUID, userEmail, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, domain.ErrEmptyComment
	}
	if _, err := s.repo.GetByID(ctx, nodeID); err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &domain.Comment{
		NodeID:    nodeID,
		UserEmail: userEmail,
		CreatedAt: now,
		UpdatedAt: now,
		Content:   content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *NodeService) ListComments(ctx context.Context, nodeID uuid.UUID) ([]*domain.Comment, error) {
	if _, err := s.repo.GetByID(ctx, nodeID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByNode(ctx, nodeID)
}

func (s *NodeService) UpdateComment(ctx context.Context, id int64, content string) error {
	if content == "" {
		return domain.ErrEmptyComment
	}
	return s.commentRepo.Update(ctx, id, content)
}

func (s *NodeService) DeleteComment(ctx context.Context, id int64) error {
	return s.commentRepo.Delete(ctx, id)
}
