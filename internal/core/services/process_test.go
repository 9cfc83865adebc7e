package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provenance-workflow-service/internal/core/domain"
	"provenance-workflow-service/internal/testutil"
)

func newProcessFixture() (*testutil.MockCheckpointRepo, *testutil.MockNodeRepo, *testutil.MockCalcJobRepo, *ProcessService) {
	repo := new(testutil.MockCheckpointRepo)
	nodeRepo := new(testutil.MockNodeRepo)
	jobRepo := new(testutil.MockCalcJobRepo)
	svc := NewProcessService(repo, nodeRepo, jobRepo)
	return repo, nodeRepo, jobRepo, svc
}

func TestProcessService_Create(t *testing.T) {
	repo, nodeRepo, _, svc := newProcessFixture()

	inputID := uuid.New()
	spec := domain.ProcessSpec{
		Inputs:  []domain.PortSpec{{Name: "structure", Required: true}},
		Outputs: []domain.PortSpec{{Name: "result"}},
	}

	nodeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Node")).Return(nil)
	nodeRepo.On("GetByID", mock.Anything, inputID).Return(&domain.Node{ID: inputID}, nil)
	nodeRepo.On("AddLink", mock.Anything, mock.MatchedBy(func(l *domain.Link) bool {
		return l.SourceID == inputID && l.Type == domain.LinkTypeInput && l.Label == "structure"
	})).Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)

	cp, err := svc.Create(context.Background(), "EquationOfState", spec,
		map[string]uuid.UUID{"structure": inputID}, nil, "")
	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessStateCreated, cp.State)
	assert.Equal(t, "EquationOfState", cp.ProcessLabel)
	assert.Nil(t, cp.WaitOn)
}

func TestProcessService_Create_MissingRequiredInput(t *testing.T) {
	_, _, _, svc := newProcessFixture()

	spec := domain.ProcessSpec{Inputs: []domain.PortSpec{{Name: "structure", Required: true}}}
	_, err := svc.Create(context.Background(), "EquationOfState", spec, nil, nil, "")
	assert.ErrorIs(t, err, domain.ErrMissingRequiredInput)
}

func TestProcessService_Create_UndeclaredInput(t *testing.T) {
	_, _, _, svc := newProcessFixture()

	spec := domain.ProcessSpec{Inputs: []domain.PortSpec{{Name: "structure"}}}
	_, err := svc.Create(context.Background(), "EquationOfState", spec,
		map[string]uuid.UUID{"bogus": uuid.New()}, nil, "")
	assert.ErrorIs(t, err, domain.ErrUndeclaredInputPort)
}

func TestProcessService_Create_WithParentAddsCallLink(t *testing.T) {
	repo, nodeRepo, _, svc := newProcessFixture()

	parentID := uuid.New()
	parentNodeID := uuid.New()
	parent := &domain.ProcessCheckpoint{ID: parentID, NodeID: parentNodeID, State: domain.ProcessStateRunning}

	repo.On("GetByID", mock.Anything, parentID).Return(parent, nil)
	nodeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Node")).Return(nil)
	nodeRepo.On("AddLink", mock.Anything, mock.MatchedBy(func(l *domain.Link) bool {
		return l.SourceID == parentNodeID && l.Type == domain.LinkTypeCall && l.Label == "scf_1"
	})).Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)

	cp, err := svc.Create(context.Background(), "PwCalculation", domain.ProcessSpec{DynamicInputs: true}, nil, &parentID, "scf_1")
	assert.NoError(t, err)
	assert.Equal(t, &parentID, cp.ParentID)
	assert.Equal(t, "scf_1", cp.ChildLabel)
}

func TestProcessService_Start(t *testing.T) {
	repo, _, _, svc := newProcessFixture()

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.ProcessCheckpoint{ID: id, State: domain.ProcessStateCreated}, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)

	cp, err := svc.Start(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessStateRunning, cp.State)
}

func TestProcessService_Start_Terminal(t *testing.T) {
	repo, _, _, svc := newProcessFixture()

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.ProcessCheckpoint{ID: id, State: domain.ProcessStateFinished}, nil)

	_, err := svc.Start(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrProcessTerminal)
}

func TestProcessService_BufferAndConsumeInput(t *testing.T) {
	repo, _, _, svc := newProcessFixture()

	id := uuid.New()
	cp := &domain.ProcessCheckpoint{ID: id, State: domain.ProcessStateRunning, InputBuffer: map[string]interface{}{}}
	repo.On("GetByID", mock.Anything, id).Return(cp, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)

	_, err := svc.BufferInput(context.Background(), id, "band_structure", map[string]interface{}{"kpoints": 40.0})
	assert.NoError(t, err)

	value, err := svc.ConsumeInput(context.Background(), id, "band_structure")
	assert.NoError(t, err)
	assert.Equal(t, 40.0, value.(map[string]interface{})["kpoints"])

	_, err = svc.ConsumeInput(context.Background(), id, "band_structure")
	assert.ErrorIs(t, err, domain.ErrInputNotBuffered)
}

func TestProcessService_WaitMarkReadyResume(t *testing.T) {
	repo, _, jobRepo, svc := newProcessFixture()

	id := uuid.New()
	jobID := uuid.New()
	cp := &domain.ProcessCheckpoint{ID: id, State: domain.ProcessStateRunning}

	repo.On("GetByID", mock.Anything, id).Return(cp, nil)
	jobRepo.On("GetByID", mock.Anything, jobID).Return(&domain.CalcJob{ID: jobID}, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)

	waiting, err := svc.Wait(context.Background(), id, jobID, "analyze_results")
	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessStateWaiting, waiting.State)
	assert.Equal(t, jobID, waiting.WaitOn.CalcJobID)
	assert.False(t, waiting.WaitOn.Satisfied)

	ready, err := svc.MarkReady(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessStateReady, ready.State)
	assert.True(t, ready.WaitOn.Satisfied)

	resumed, callback, err := svc.Resume(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessStateRunning, resumed.State)
	assert.Equal(t, "analyze_results", callback)
	assert.Nil(t, resumed.WaitOn)
}

func TestProcessService_Wait_NotRunning(t *testing.T) {
	repo, _, _, svc := newProcessFixture()

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.ProcessCheckpoint{ID: id, State: domain.ProcessStateCreated}, nil)

	_, err := svc.Wait(context.Background(), id, uuid.New(), "cb")
	assert.ErrorIs(t, err, domain.ErrProcessNotWaiting)
}

func TestProcessService_Resume_NotReady(t *testing.T) {
	repo, _, _, svc := newProcessFixture()

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.ProcessCheckpoint{ID: id, State: domain.ProcessStateRunning}, nil)

	_, _, err := svc.Resume(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrProcessNotResumable)
}

func TestProcessService_EmitOutput(t *testing.T) {
	repo, nodeRepo, _, svc := newProcessFixture()

	id := uuid.New()
	nodeID := uuid.New()
	cp := &domain.ProcessCheckpoint{
		ID: id, NodeID: nodeID, State: domain.ProcessStateRunning,
		Spec: domain.ProcessSpec{Outputs: []domain.PortSpec{{Name: "result"}}},
	}
	repo.On("GetByID", mock.Anything, id).Return(cp, nil)
	nodeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Node")).Return(nil)
	nodeRepo.On("AddLink", mock.Anything, mock.MatchedBy(func(l *domain.Link) bool {
		return l.SourceID == nodeID && l.Type == domain.LinkTypeCreate && l.Label == "result"
	})).Return(nil)

	node, err := svc.EmitOutput(context.Background(), id, "result", map[string]interface{}{"volume": 62.1})
	assert.NoError(t, err)
	assert.Equal(t, "result", node.Label)
}

func TestProcessService_EmitOutput_UndeclaredPortFailsProcess(t *testing.T) {
	repo, nodeRepo, _, svc := newProcessFixture()

	id := uuid.New()
	nodeID := uuid.New()
	cp := &domain.ProcessCheckpoint{ID: id, NodeID: nodeID, State: domain.ProcessStateRunning}
	repo.On("GetByID", mock.Anything, id).Return(cp, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)
	nodeRepo.On("Seal", mock.Anything, nodeID).Return(nil)

	_, err := svc.EmitOutput(context.Background(), id, "bogus", nil)
	assert.ErrorIs(t, err, domain.ErrUndeclaredOutputPort)
	assert.Equal(t, domain.ProcessStateFailed, cp.State)
}

func TestProcessService_ReturnOutput(t *testing.T) {
	repo, nodeRepo, _, svc := newProcessFixture()

	id := uuid.New()
	nodeID := uuid.New()
	resultID := uuid.New()
	cp := &domain.ProcessCheckpoint{
		ID: id, NodeID: nodeID, State: domain.ProcessStateRunning,
		Spec: domain.ProcessSpec{DynamicOutputs: true},
	}
	repo.On("GetByID", mock.Anything, id).Return(cp, nil)
	nodeRepo.On("GetByID", mock.Anything, resultID).Return(&domain.Node{ID: resultID}, nil)
	nodeRepo.On("AddLink", mock.Anything, mock.MatchedBy(func(l *domain.Link) bool {
		return l.SourceID == nodeID && l.TargetID == resultID && l.Type == domain.LinkTypeReturn
	})).Return(nil)

	err := svc.ReturnOutput(context.Background(), id, "final_structure", resultID)
	assert.NoError(t, err)
}

func TestProcessService_Finish_SealsNode(t *testing.T) {
	repo, nodeRepo, _, svc := newProcessFixture()

	id := uuid.New()
	nodeID := uuid.New()
	cp := &domain.ProcessCheckpoint{ID: id, NodeID: nodeID, State: domain.ProcessStateRunning}
	repo.On("GetByID", mock.Anything, id).Return(cp, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)
	nodeRepo.On("Seal", mock.Anything, nodeID).Return(nil)

	finished, err := svc.Finish(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessStateFinished, finished.State)
	nodeRepo.AssertCalled(t, "Seal", mock.Anything, nodeID)
}

func TestProcessService_Fail_RecordsReason(t *testing.T) {
	repo, nodeRepo, _, svc := newProcessFixture()

	id := uuid.New()
	nodeID := uuid.New()
	cp := &domain.ProcessCheckpoint{ID: id, NodeID: nodeID, State: domain.ProcessStateRunning}
	repo.On("GetByID", mock.Anything, id).Return(cp, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)
	nodeRepo.On("Seal", mock.Anything, nodeID).Return(nil)

	failed, err := svc.Fail(context.Background(), id, "scf did not converge")
	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessStateFailed, failed.State)
	assert.Equal(t, "scf did not converge", failed.InstanceState["error"])
}
