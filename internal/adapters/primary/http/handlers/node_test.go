package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provenance-workflow-service/internal/core/domain"
	"provenance-workflow-service/internal/core/services"
	"provenance-workflow-service/internal/testutil"
)

type routerFixture struct {
	nodeRepo     *testutil.MockNodeRepo
	commentRepo  *testutil.MockCommentRepo
	computerRepo *testutil.MockComputerRepo
	codeRepo     *testutil.MockCodeRepo
	jobRepo      *testutil.MockCalcJobRepo
	cpRepo       *testutil.MockCheckpointRepo
	scheduler    *testutil.MockSchedulerClient
	router       *gin.Engine
}

func setupRouter() *routerFixture {
	gin.SetMode(gin.TestMode)

	f := &routerFixture{
		nodeRepo:     new(testutil.MockNodeRepo),
		commentRepo:  new(testutil.MockCommentRepo),
		computerRepo: new(testutil.MockComputerRepo),
		codeRepo:     new(testutil.MockCodeRepo),
		jobRepo:      new(testutil.MockCalcJobRepo),
		cpRepo:       new(testutil.MockCheckpointRepo),
		scheduler:    new(testutil.MockSchedulerClient),
	}

	nodeSvc := services.NewNodeService(f.nodeRepo, f.commentRepo)
	graphSvc := services.NewGraphService(f.nodeRepo)
	computerSvc := services.NewComputerService(f.computerRepo)
	codeSvc := services.NewCodeService(f.codeRepo, f.computerRepo)
	calcJobSvc := services.NewCalcJobService(f.jobRepo, f.nodeRepo, f.codeRepo, f.computerRepo, f.scheduler)
	processSvc := services.NewProcessService(f.cpRepo, f.nodeRepo, f.jobRepo)
	inlineSvc := services.NewInlineService(f.nodeRepo)

	h := New(nodeSvc, graphSvc, computerSvc, codeSvc, calcJobSvc, processSvc, inlineSvc)
	f.router = gin.New()
	api := f.router.Group("/api/v1/provenance")
	h.RegisterRoutes(api)
	return f
}

func TestCreateNode(t *testing.T) {
	f := setupRouter()

	f.nodeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Node")).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"type":       "data.parameter",
		"label":      "pw-inputs",
		"attributes": map[string]interface{}{"ecutwfc": 30},
	})
	req, _ := http.NewRequest("POST", "/api/v1/provenance/nodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp domain.Node
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, domain.NodeTypeParameter, resp.Type)
	assert.Equal(t, "pw-inputs", resp.Label)
}

func TestCreateNode_MissingLabel(t *testing.T) {
	f := setupRouter()

	req, _ := http.NewRequest("POST", "/api/v1/provenance/nodes", bytes.NewReader([]byte(`{"type":"data"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNode_NotFound(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	f.nodeRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNodeNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/provenance/nodes/"+id.String(), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetNode_InvalidID(t *testing.T) {
	f := setupRouter()

	req, _ := http.NewRequest("GET", "/api/v1/provenance/nodes/not-a-uuid", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListNodes(t *testing.T) {
	f := setupRouter()

	nodes := []*domain.Node{{
		ID: uuid.New(), Type: domain.NodeTypeData, Label: "n1",
		CreatedAt: time.Now(), UpdatedAt: time.Now(), Version: 1,
		Attributes: map[string]interface{}{}, Extras: map[string]interface{}{},
	}}
	f.nodeRepo.On("List", mock.Anything, mock.AnythingOfType("ports.NodeListFilter")).Return(nodes, 1, nil)

	req, _ := http.NewRequest("GET", "/api/v1/provenance/nodes?limit=10", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(1), resp["total"])
}

func TestSetNodeAttributes_Sealed(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	f.nodeRepo.On("GetByID", mock.Anything, id).Return(&domain.Node{ID: id, Sealed: true}, nil)

	body := []byte(`{"attributes":{"k":"v"}}`)
	req, _ := http.NewRequest("PUT", "/api/v1/provenance/nodes/"+id.String()+"/attributes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddLink_Conflict(t *testing.T) {
	f := setupRouter()

	targetID := uuid.New()
	sourceID := uuid.New()
	f.nodeRepo.On("GetByID", mock.Anything, sourceID).Return(&domain.Node{ID: sourceID}, nil)
	f.nodeRepo.On("GetByID", mock.Anything, targetID).Return(&domain.Node{ID: targetID}, nil)
	f.nodeRepo.On("HasPath", mock.Anything, targetID, sourceID).Return(false, nil)
	f.nodeRepo.On("AddLink", mock.Anything, mock.AnythingOfType("*domain.Link")).Return(domain.ErrLinkLabelConflict)

	body, _ := json.Marshal(map[string]interface{}{
		"source_id": sourceID,
		"label":     "parameters",
		"type":      "INPUT",
	})
	req, _ := http.NewRequest("POST", "/api/v1/provenance/nodes/"+targetID.String()+"/links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSealNode(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	unsealed := &domain.Node{ID: id, Sealed: false}
	sealed := &domain.Node{ID: id, Sealed: true}
	f.nodeRepo.On("GetByID", mock.Anything, id).Return(unsealed, nil).Once()
	f.nodeRepo.On("Seal", mock.Anything, id).Return(nil)
	f.nodeRepo.On("GetByID", mock.Anything, id).Return(sealed, nil)

	req, _ := http.NewRequest("POST", "/api/v1/provenance/nodes/"+id.String()+"/seal", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp domain.Node
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.True(t, resp.Sealed)
}
