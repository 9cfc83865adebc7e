package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

// InlineFunc computes output documents from input nodes. The returned map
// goes from output link label to the attribute document of a new data node.
type InlineFunc func(inputs map[string]*domain.Node) (map[string]map[string]interface{}, error)

// InlineService runs registered functions synchronously. With store enabled
// the run is captured in the provenance graph: a process node of type
// process.inline, INPUT links from every input and CREATE links to every
// output. Without store the function just runs and returns its results.
type InlineService struct {
	nodeRepo ports.NodeRepository

	mu    sync.RWMutex
	funcs map[string]InlineFunc
}

func NewInlineService(nodeRepo ports.NodeRepository) *InlineService {
	return &InlineService{
		nodeRepo: nodeRepo,
		funcs:    make(map[string]InlineFunc),
	}
}

func (s *InlineService) Register(name string, fn InlineFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs[name] = fn
}

func (s *InlineService) Registered() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.funcs))
	for name := range s.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InlineResult reports one run. ProcessNode is nil when store was off.
type InlineResult struct {
	ProcessNode *domain.Node                      `json:"process_node,omitempty"`
	Outputs     map[string]*domain.Node           `json:"outputs,omitempty"`
	Raw         map[string]map[string]interface{} `json:"raw,omitempty"`
}

func (s *InlineService) Run(ctx context.Context, name string, inputIDs map[string]uuid.UUID, store bool) (*InlineResult, error) {
	s.mu.RLock()
	fn, ok := s.funcs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUnknownInlineFunc
	}

	inputs := make(map[string]*domain.Node, len(inputIDs))
	for label, id := range inputIDs {
		node, err := s.nodeRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		inputs[label] = node
	}

	results, err := fn(inputs)
	if err != nil {
		return nil, fmt.Errorf("inline function %q: %w", name, err)
	}

	if !store {
		return &InlineResult{Raw: results}, nil
	}

	now := time.Now()
	procNode := &domain.Node{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Type:       domain.NodeTypeInline,
		Label:      name,
		Version:    1,
		Attributes: map[string]interface{}{"function_name": name},
		Extras:     make(map[string]interface{}),
	}
	if err := s.nodeRepo.Create(ctx, procNode); err != nil {
		return nil, err
	}

	for label, input := range inputs {
		if err := s.nodeRepo.AddLink(ctx, &domain.Link{
			SourceID:  input.ID,
			TargetID:  procNode.ID,
			Label:     label,
			Type:      domain.LinkTypeInput,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	outputs := make(map[string]*domain.Node, len(results))
	for label, attrs := range results {
		outNode := &domain.Node{
			ID:         uuid.New(),
			CreatedAt:  now,
			UpdatedAt:  now,
			Type:       domain.NodeTypeParameter,
			Label:      label,
			Version:    1,
			Attributes: attrs,
			Extras:     make(map[string]interface{}),
		}
		if err := s.nodeRepo.Create(ctx, outNode); err != nil {
			return nil, err
		}
		if err := s.nodeRepo.AddLink(ctx, &domain.Link{
			SourceID:  procNode.ID,
			TargetID:  outNode.ID,
			Label:     label,
			Type:      domain.LinkTypeCreate,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
		outputs[label] = outNode
	}

	if err := s.nodeRepo.Seal(ctx, procNode.ID); err != nil {
		return nil, err
	}

	return &InlineResult{ProcessNode: procNode, Outputs: outputs, Raw: results}, nil
}
