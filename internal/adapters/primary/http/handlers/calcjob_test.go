package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

func TestCreateCalcJob(t *testing.T) {
	f := setupRouter()

	computerID := uuid.New()
	codeID := uuid.New()
	f.codeRepo.On("GetByID", mock.Anything, codeID).Return(&domain.Code{ID: codeID, ComputerID: computerID, Name: "pw"}, nil)
	f.computerRepo.On("GetByID", mock.Anything, computerID).Return(&domain.Computer{ID: computerID, Name: "daint", Enabled: true}, nil)
	f.nodeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Node")).Return(nil)
	f.nodeRepo.On("AddLink", mock.Anything, mock.AnythingOfType("*domain.Link")).Return(nil)
	f.jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CalcJob")).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"code_id":    codeID,
		"queue":      "normal",
		"resources":  map[string]interface{}{"num_machines": 2},
		"parameters": map[string]interface{}{"ecutwfc": 30},
	})
	req, _ := http.NewRequest("POST", "/api/v1/provenance/calcjobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp domain.CalcJob
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, domain.CalcJobStateNew, resp.State)
}

func TestCreateCalcJob_InvalidResources(t *testing.T) {
	f := setupRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"code_id":   uuid.New(),
		"resources": map[string]interface{}{"num_machines": 0},
	})
	req, _ := http.NewRequest("POST", "/api/v1/provenance/calcjobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitCalcJob_DryRun(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	codeID := uuid.New()
	computerID := uuid.New()
	f.jobRepo.On("GetByID", mock.Anything, id).Return(&domain.CalcJob{
		ID: id, CodeID: codeID, ComputerID: computerID, State: domain.CalcJobStateNew,
	}, nil)
	f.scheduler.On("IsAvailable").Return(true)
	f.codeRepo.On("GetByID", mock.Anything, codeID).Return(&domain.Code{ID: codeID}, nil)
	f.computerRepo.On("GetByID", mock.Anything, computerID).Return(&domain.Computer{ID: computerID}, nil)
	f.scheduler.On("Render", mock.AnythingOfType("ports.JobSubmission")).Return(map[string]interface{}{"kind": "Job"}, nil)

	req, _ := http.NewRequest("POST", "/api/v1/provenance/calcjobs/"+id.String()+"/submit?dry_run=true", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	manifest := resp["manifest"].(map[string]interface{})
	assert.Equal(t, "Job", manifest["kind"])
}

func TestSubmitCalcJob_SchedulerUnavailable(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	f.jobRepo.On("GetByID", mock.Anything, id).Return(&domain.CalcJob{ID: id, State: domain.CalcJobStateNew}, nil)
	f.scheduler.On("IsAvailable").Return(false)

	req, _ := http.NewRequest("POST", "/api/v1/provenance/calcjobs/"+id.String()+"/submit", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTransitionCalcJob_Illegal(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	f.jobRepo.On("GetByID", mock.Anything, id).Return(&domain.CalcJob{ID: id, State: domain.CalcJobStateNew}, nil)

	body := []byte(`{"state":"FINISHED"}`)
	req, _ := http.NewRequest("POST", "/api/v1/provenance/calcjobs/"+id.String()+"/transition", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCalcJobs_FilterByState(t *testing.T) {
	f := setupRouter()

	jobs := []*domain.CalcJob{{ID: uuid.New(), State: domain.CalcJobStateRunning}}
	f.jobRepo.On("List", mock.Anything, mock.MatchedBy(func(filter ports.CalcJobListFilter) bool {
		return filter.State == "RUNNING"
	})).Return(jobs, 1, nil)

	req, _ := http.NewRequest("GET", "/api/v1/provenance/calcjobs?state=RUNNING", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(1), resp["total"])
}

func TestRecordCalcJobOutput(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	nodeID := uuid.New()
	f.jobRepo.On("GetByID", mock.Anything, id).Return(&domain.CalcJob{ID: id, NodeID: nodeID, State: domain.CalcJobStateRetrieving}, nil)
	f.nodeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Node")).Return(nil)
	f.nodeRepo.On("AddLink", mock.Anything, mock.AnythingOfType("*domain.Link")).Return(nil)

	body := []byte(`{"label":"output_parameters","attributes":{"energy":-154.2}}`)
	req, _ := http.NewRequest("POST", "/api/v1/provenance/calcjobs/"+id.String()+"/outputs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}
