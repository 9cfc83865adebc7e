package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
	"provenance-workflow-service/internal/testutil"
)

func TestGraphService_Inputs(t *testing.T) {
	repo := new(testutil.MockNodeRepo)
	svc := NewGraphService(repo)

	id := uuid.New()
	sourceID := uuid.New()
	links := []*domain.Link{{ID: 1, SourceID: sourceID, TargetID: id, Label: "parameters", Type: domain.LinkTypeInput}}

	repo.On("GetByID", mock.Anything, id).Return(&domain.Node{ID: id}, nil)
	repo.On("IncomingLinks", mock.Anything, id, ports.LinkFilter{}).Return(links, nil)
	repo.On("GetByID", mock.Anything, sourceID).Return(&domain.Node{ID: sourceID, Label: "pw-inputs"}, nil)

	inputs, err := svc.Inputs(context.Background(), id, ports.LinkFilter{})
	assert.NoError(t, err)
	assert.Len(t, inputs, 1)
	assert.Equal(t, "parameters", inputs[0].Link.Label)
	assert.Equal(t, "pw-inputs", inputs[0].Node.Label)
}

func TestGraphService_Outputs_FilterByType(t *testing.T) {
	repo := new(testutil.MockNodeRepo)
	svc := NewGraphService(repo)

	id := uuid.New()
	targetID := uuid.New()
	filter := ports.LinkFilter{Type: domain.LinkTypeCreate}
	links := []*domain.Link{{ID: 2, SourceID: id, TargetID: targetID, Label: "output_parameters", Type: domain.LinkTypeCreate}}

	repo.On("GetByID", mock.Anything, id).Return(&domain.Node{ID: id}, nil)
	repo.On("OutgoingLinks", mock.Anything, id, filter).Return(links, nil)
	repo.On("GetByID", mock.Anything, targetID).Return(&domain.Node{ID: targetID}, nil)

	outputs, err := svc.Outputs(context.Background(), id, filter)
	assert.NoError(t, err)
	assert.Len(t, outputs, 1)
	assert.Equal(t, domain.LinkTypeCreate, outputs[0].Link.Type)
}

func TestGraphService_Inputs_NodeNotFound(t *testing.T) {
	repo := new(testutil.MockNodeRepo)
	svc := NewGraphService(repo)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNodeNotFound)

	_, err := svc.Inputs(context.Background(), id, ports.LinkFilter{})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestGraphService_Ancestors_DefaultDepth(t *testing.T) {
	repo := new(testutil.MockNodeRepo)
	svc := NewGraphService(repo)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Node{ID: id}, nil)
	repo.On("Ancestors", mock.Anything, id, 10).Return([]*domain.Node{}, nil)

	_, err := svc.Ancestors(context.Background(), id, 0)
	assert.NoError(t, err)
	repo.AssertCalled(t, "Ancestors", mock.Anything, id, 10)
}

func TestGraphService_Descendants(t *testing.T) {
	repo := new(testutil.MockNodeRepo)
	svc := NewGraphService(repo)

	id := uuid.New()
	child := &domain.Node{ID: uuid.New()}
	repo.On("GetByID", mock.Anything, id).Return(&domain.Node{ID: id}, nil)
	repo.On("Descendants", mock.Anything, id, 3).Return([]*domain.Node{child}, nil)

	nodes, err := svc.Descendants(context.Background(), id, 3)
	assert.NoError(t, err)
	assert.Len(t, nodes, 1)
}
