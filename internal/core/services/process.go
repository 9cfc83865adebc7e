package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

type ProcessService struct {
	repo     ports.CheckpointRepository
	nodeRepo ports.NodeRepository
	jobRepo  ports.CalcJobRepository
}

func NewProcessService(repo ports.CheckpointRepository, nodeRepo ports.NodeRepository, jobRepo ports.CalcJobRepository) *ProcessService {
	return &ProcessService{repo: repo, nodeRepo: nodeRepo, jobRepo: jobRepo}
}

// Create opens a new process: a workflow node plus its checkpoint. Inputs
// are validated against the spec and wired to the node with INPUT links.
// When a parent process is given, a CALL link records the nesting and
// childLabel names the slot in the parent outline.
func (s *ProcessService) Create(ctx context.Context, processLabel string, spec domain.ProcessSpec, inputs map[string]uuid.UUID, parentID *uuid.UUID, childLabel string) (*domain.ProcessCheckpoint, error) {
	if processLabel == "" {
		return nil, domain.ErrInvalidProcessLabel
	}
	if inputs == nil {
		inputs = make(map[string]uuid.UUID)
	}
	if err := spec.ValidateInputs(inputs); err != nil {
		return nil, err
	}

	var parent *domain.ProcessCheckpoint
	if parentID != nil {
		var err error
		parent, err = s.repo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	node := &domain.Node{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Type:       domain.NodeTypeWorkflow,
		Label:      processLabel,
		Version:    1,
		Attributes: map[string]interface{}{"process_label": processLabel},
		Extras:     make(map[string]interface{}),
	}
	if err := s.nodeRepo.Create(ctx, node); err != nil {
		return nil, err
	}

	for label, inputID := range inputs {
		if _, err := s.nodeRepo.GetByID(ctx, inputID); err != nil {
			return nil, err
		}
		if err := s.nodeRepo.AddLink(ctx, &domain.Link{
			SourceID:  inputID,
			TargetID:  node.ID,
			Label:     label,
			Type:      domain.LinkTypeInput,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	if parent != nil {
		if err := s.nodeRepo.AddLink(ctx, &domain.Link{
			SourceID:  parent.NodeID,
			TargetID:  node.ID,
			Label:     childLabel,
			Type:      domain.LinkTypeCall,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	cp := &domain.ProcessCheckpoint{
		ID:            uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
		NodeID:        node.ID,
		ProcessLabel:  processLabel,
		State:         domain.ProcessStateCreated,
		Spec:          spec,
		InstanceState: make(map[string]interface{}),
		InputBuffer:   make(map[string]interface{}),
		ChildLabel:    childLabel,
		ParentID:      parentID,
	}
	if err := s.repo.Create(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *ProcessService) Get(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProcessService) GetByNode(ctx context.Context, nodeID uuid.UUID) (*domain.ProcessCheckpoint, error) {
	return s.repo.GetByNodeID(ctx, nodeID)
}

func (s *ProcessService) List(ctx context.Context, filter ports.CheckpointListFilter) ([]*domain.ProcessCheckpoint, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

func (s *ProcessService) Start(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State.IsTerminal() {
		return nil, domain.ErrProcessTerminal
	}
	if cp.State != domain.ProcessStateCreated {
		return cp, nil
	}
	cp.State = domain.ProcessStateRunning
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// SaveState persists the opaque instance bundle so the process can be
// rebuilt after a restart.
func (s *ProcessService) SaveState(ctx context.Context, id uuid.UUID, instanceState map[string]interface{}) (*domain.ProcessCheckpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State.IsTerminal() {
		return nil, domain.ErrProcessTerminal
	}
	if instanceState == nil {
		instanceState = make(map[string]interface{})
	}
	cp.InstanceState = instanceState
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// BufferInput records a value received on a link before a child consumed it.
func (s *ProcessService) BufferInput(ctx context.Context, id uuid.UUID, link string, value interface{}) (*domain.ProcessCheckpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State.IsTerminal() {
		return nil, domain.ErrProcessTerminal
	}
	if cp.InputBuffer == nil {
		cp.InputBuffer = make(map[string]interface{})
	}
	cp.InputBuffer[link] = value
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// ConsumeInput removes a buffered value and returns it.
func (s *ProcessService) ConsumeInput(ctx context.Context, id uuid.UUID, link string) (interface{}, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	value, ok := cp.InputBuffer[link]
	if !ok {
		return nil, domain.ErrInputNotBuffered
	}
	delete(cp.InputBuffer, link)
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return value, nil
}

// Wait parks a running process on a calc job. The engine poller flips it to
// READY once the job has left the running states; callbackName names the
// step to continue with.
func (s *ProcessService) Wait(ctx context.Context, id uuid.UUID, calcJobID uuid.UUID, callbackName string) (*domain.ProcessCheckpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State != domain.ProcessStateRunning {
		return nil, domain.ErrProcessNotWaiting
	}
	if _, err := s.jobRepo.GetByID(ctx, calcJobID); err != nil {
		return nil, err
	}

	cp.State = domain.ProcessStateWaiting
	cp.WaitOn = &domain.WaitOn{CalcJobID: calcJobID, CallbackName: callbackName}
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// MarkReady satisfies the wait-on of a waiting process.
func (s *ProcessService) MarkReady(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State != domain.ProcessStateWaiting || cp.WaitOn == nil {
		return nil, domain.ErrProcessNotWaiting
	}
	cp.State = domain.ProcessStateReady
	cp.WaitOn.Satisfied = true
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// Resume moves a READY process back to RUNNING and hands the stored
// callback name to the caller. The wait-on is cleared.
func (s *ProcessService) Resume(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, string, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if cp.State != domain.ProcessStateReady || cp.WaitOn == nil {
		return nil, "", domain.ErrProcessNotResumable
	}

	callback := cp.WaitOn.CallbackName
	cp.State = domain.ProcessStateRunning
	cp.WaitOn = nil
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, "", err
	}
	return cp, callback, nil
}

// EmitOutput creates a fresh data node for an output document and wires it
// with a CREATE link. Emitting on an undeclared port without dynamic
// outputs fails the whole process.
func (s *ProcessService) EmitOutput(ctx context.Context, id uuid.UUID, port string, attributes map[string]interface{}) (*domain.Node, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State.IsTerminal() {
		return nil, domain.ErrProcessTerminal
	}
	if !cp.Spec.HasOutput(port) && !cp.Spec.DynamicOutputs {
		if _, failErr := s.Fail(ctx, id, domain.ErrUndeclaredOutputPort.Error()); failErr != nil {
			return nil, failErr
		}
		return nil, domain.ErrUndeclaredOutputPort
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
		Label:      port,
		Version:    1,
		Attributes: attributes,
		Extras:     make(map[string]interface{}),
	}
	if err := s.nodeRepo.Create(ctx, outNode); err != nil {
		return nil, err
	}
	if err := s.nodeRepo.AddLink(ctx, &domain.Link{
		SourceID:  cp.NodeID,
		TargetID:  outNode.ID,
		Label:     port,
		Type:      domain.LinkTypeCreate,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return outNode, nil
}

// ReturnOutput exposes an already existing node as an output of the process
// with a RETURN link, the way workflows hand back results produced by the
// calculations they called.
func (s *ProcessService) ReturnOutput(ctx context.Context, id uuid.UUID, port string, nodeID uuid.UUID) error {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cp.State.IsTerminal() {
		return domain.ErrProcessTerminal
	}
	if !cp.Spec.HasOutput(port) && !cp.Spec.DynamicOutputs {
		if _, failErr := s.Fail(ctx, id, domain.ErrUndeclaredOutputPort.Error()); failErr != nil {
			return failErr
		}
		return domain.ErrUndeclaredOutputPort
	}
	if _, err := s.nodeRepo.GetByID(ctx, nodeID); err != nil {
		return err
	}

	return s.nodeRepo.AddLink(ctx, &domain.Link{
		SourceID:  cp.NodeID,
		TargetID:  nodeID,
		Label:     port,
		Type:      domain.LinkTypeReturn,
		CreatedAt: time.Now(),
	})
}

// Finish terminates the process and seals its node.
func (s *ProcessService) Finish(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State.IsTerminal() {
		return nil, domain.ErrProcessTerminal
	}

	cp.State = domain.ProcessStateFinished
	cp.WaitOn = nil
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	if err := s.nodeRepo.Seal(ctx, cp.NodeID); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *ProcessService) Fail(ctx context.Context, id uuid.UUID, reason string) (*domain.ProcessCheckpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.State.IsTerminal() {
		return nil, domain.ErrProcessTerminal
	}

	cp.State = domain.ProcessStateFailed
	cp.WaitOn = nil
	if cp.InstanceState == nil {
		cp.InstanceState = make(map[string]interface{})
	}
	cp.InstanceState["error"] = reason
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	if err := s.nodeRepo.Seal(ctx, cp.NodeID); err != nil {
		return nil, err
	}
	return cp, nil
}

// ListResumable returns processes whose wait-on has been satisfied.
func (s *ProcessService) ListResumable(ctx context.Context, limit int) ([]*domain.ProcessCheckpoint, error) {
	if limit <= 0 {
		limit = 50
	}
	cps, _, err := s.repo.List(ctx, ports.CheckpointListFilter{
		State: string(domain.ProcessStateReady),
		Limit: limit,
	})
	return cps, err
}
