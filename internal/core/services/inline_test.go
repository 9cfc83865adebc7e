package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provenance-workflow-service/internal/core/domain"
	"provenance-workflow-service/internal/testutil"
)

func rescaleFunc(inputs map[string]*domain.Node) (map[string]map[string]interface{}, error) {
	structure, ok := inputs["structure"]
	if !ok {
		return nil, errors.New("structure input missing")
	}
	scale, _ := structure.Attributes["scale"].(float64)
	return map[string]map[string]interface{}{
		"rescaled": {"scale": scale * 2},
	}, nil
}

func TestInlineService_Registered(t *testing.T) {
	svc := NewInlineService(new(testutil.MockNodeRepo))
	svc.Register("rescale", rescaleFunc)
	svc.Register("analyze", rescaleFunc)

	assert.Equal(t, []string{"analyze", "rescale"}, svc.Registered())
}

func TestInlineService_Run_UnknownFunction(t *testing.T) {
	svc := NewInlineService(new(testutil.MockNodeRepo))

	_, err := svc.Run(context.Background(), "missing", nil, false)
	assert.ErrorIs(t, err, domain.ErrUnknownInlineFunc)
}

func TestInlineService_Run_WithoutStore(t *testing.T) {
	nodeRepo := new(testutil.MockNodeRepo)
	svc := NewInlineService(nodeRepo)
	svc.Register("rescale", rescaleFunc)

	inputID := uuid.New()
	nodeRepo.On("GetByID", mock.Anything, inputID).Return(&domain.Node{
		ID: inputID, Attributes: map[string]interface{}{"scale": 2.0},
	}, nil)

	result, err := svc.Run(context.Background(), "rescale", map[string]uuid.UUID{"structure": inputID}, false)
	assert.NoError(t, err)
	assert.Nil(t, result.ProcessNode)
	assert.Equal(t, 4.0, result.Raw["rescaled"]["scale"])
	nodeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInlineService_Run_WithStore(t *testing.T) {
	nodeRepo := new(testutil.MockNodeRepo)
	svc := NewInlineService(nodeRepo)
	svc.Register("rescale", rescaleFunc)

	inputID := uuid.New()
	nodeRepo.On("GetByID", mock.Anything, inputID).Return(&domain.Node{
		ID: inputID, Attributes: map[string]interface{}{"scale": 1.5},
	}, nil)
	nodeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Node")).Return(nil)
	nodeRepo.On("AddLink", mock.Anything, mock.AnythingOfType("*domain.Link")).Return(nil)
	nodeRepo.On("Seal", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	result, err := svc.Run(context.Background(), "rescale", map[string]uuid.UUID{"structure": inputID}, true)
	assert.NoError(t, err)
	assert.NotNil(t, result.ProcessNode)
	assert.Equal(t, domain.NodeTypeInline, result.ProcessNode.Type)
	assert.Len(t, result.Outputs, 1)
	assert.Equal(t, 3.0, result.Outputs["rescaled"].Attributes["scale"])

	// Process node plus one output node, one INPUT and one CREATE link,
	// sealed at the end.
	nodeRepo.AssertNumberOfCalls(t, "Create", 2)
	nodeRepo.AssertNumberOfCalls(t, "AddLink", 2)
	nodeRepo.AssertCalled(t, "Seal", mock.Anything, result.ProcessNode.ID)
}

func TestInlineService_RegisterBuiltins(t *testing.T) {
	svc := NewInlineService(new(testutil.MockNodeRepo))
	svc.RegisterBuiltins()

	assert.Equal(t, []string{"merge_parameters", "sum_values"}, svc.Registered())
}

func TestInlineService_Builtin_MergeParameters(t *testing.T) {
	nodeRepo := new(testutil.MockNodeRepo)
	svc := NewInlineService(nodeRepo)
	svc.RegisterBuiltins()

	aID, bID := uuid.New(), uuid.New()
	nodeRepo.On("GetByID", mock.Anything, aID).Return(&domain.Node{
		ID: aID, Attributes: map[string]interface{}{"ecutwfc": 30.0, "conv_thr": 1e-6},
	}, nil)
	nodeRepo.On("GetByID", mock.Anything, bID).Return(&domain.Node{
		ID: bID, Attributes: map[string]interface{}{"ecutwfc": 45.0},
	}, nil)

	result, err := svc.Run(context.Background(), "merge_parameters",
		map[string]uuid.UUID{"base": aID, "override": bID}, false)
	assert.NoError(t, err)
	// "override" sorts after "base", so its ecutwfc wins.
	assert.Equal(t, 45.0, result.Raw["merged"]["ecutwfc"])
	assert.Equal(t, 1e-6, result.Raw["merged"]["conv_thr"])
}

func TestInlineService_Builtin_SumValues(t *testing.T) {
	nodeRepo := new(testutil.MockNodeRepo)
	svc := NewInlineService(nodeRepo)
	svc.RegisterBuiltins()

	aID, bID := uuid.New(), uuid.New()
	nodeRepo.On("GetByID", mock.Anything, aID).Return(&domain.Node{
		ID: aID, Attributes: map[string]interface{}{"value": 1.5},
	}, nil)
	nodeRepo.On("GetByID", mock.Anything, bID).Return(&domain.Node{
		ID: bID, Attributes: map[string]interface{}{"value": 2},
	}, nil)

	result, err := svc.Run(context.Background(), "sum_values",
		map[string]uuid.UUID{"a": aID, "b": bID}, false)
	assert.NoError(t, err)
	assert.Equal(t, 3.5, result.Raw["sum"]["value"])
}

func TestInlineService_Builtin_SumValues_NonNumeric(t *testing.T) {
	nodeRepo := new(testutil.MockNodeRepo)
	svc := NewInlineService(nodeRepo)
	svc.RegisterBuiltins()

	id := uuid.New()
	nodeRepo.On("GetByID", mock.Anything, id).Return(&domain.Node{
		ID: id, Attributes: map[string]interface{}{"value": "fast"},
	}, nil)

	_, err := svc.Run(context.Background(), "sum_values", map[string]uuid.UUID{"a": id}, false)
	assert.Error(t, err)
}

func TestInlineService_Run_FunctionError(t *testing.T) {
	nodeRepo := new(testutil.MockNodeRepo)
	svc := NewInlineService(nodeRepo)
	svc.Register("rescale", rescaleFunc)

	result, err := svc.Run(context.Background(), "rescale", nil, false)
	assert.Error(t, err)
	assert.Nil(t, result)
}
