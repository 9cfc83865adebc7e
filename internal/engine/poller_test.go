package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provenance-workflow-service/internal/core/domain"
	"provenance-workflow-service/internal/core/services"
	"provenance-workflow-service/internal/testutil"
)

type pollerFixture struct {
	cpRepo    *testutil.MockCheckpointRepo
	jobRepo   *testutil.MockCalcJobRepo
	scheduler *testutil.MockSchedulerClient
	poller    *Poller
}

func newPollerFixture() *pollerFixture {
	cpRepo := new(testutil.MockCheckpointRepo)
	jobRepo := new(testutil.MockCalcJobRepo)
	nodeRepo := new(testutil.MockNodeRepo)
	scheduler := new(testutil.MockSchedulerClient)

	processSvc := services.NewProcessService(cpRepo, nodeRepo, jobRepo)
	calcJobSvc := services.NewCalcJobService(jobRepo, nodeRepo, new(testutil.MockCodeRepo), new(testutil.MockComputerRepo), scheduler)

	return &pollerFixture{
		cpRepo:    cpRepo,
		jobRepo:   jobRepo,
		scheduler: scheduler,
		poller:    NewPoller(processSvc, calcJobSvc, cpRepo, time.Minute, 10),
	}
}

func TestPoller_Tick_WakesProcessWhenJobTerminal(t *testing.T) {
	f := newPollerFixture()

	jobID := uuid.New()
	cpID := uuid.New()
	cp := &domain.ProcessCheckpoint{
		ID:     cpID,
		State:  domain.ProcessStateWaiting,
		WaitOn: &domain.WaitOn{CalcJobID: jobID, CallbackName: "retrieve"},
	}

	f.cpRepo.On("ListWaiting", mock.Anything, 10).Return([]*domain.ProcessCheckpoint{cp}, nil)
	f.jobRepo.On("GetByID", mock.Anything, jobID).Return(&domain.CalcJob{ID: jobID, State: domain.CalcJobStateFinished}, nil)
	f.cpRepo.On("GetByID", mock.Anything, cpID).Return(cp, nil)
	f.cpRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProcessCheckpoint")).Return(nil)

	f.poller.Tick(context.Background())

	assert.Equal(t, domain.ProcessStateReady, cp.State)
	assert.True(t, cp.WaitOn.Satisfied)
}

func TestPoller_Tick_LeavesRunningJobAlone(t *testing.T) {
	f := newPollerFixture()

	jobID := uuid.New()
	cp := &domain.ProcessCheckpoint{
		ID:     uuid.New(),
		State:  domain.ProcessStateWaiting,
		WaitOn: &domain.WaitOn{CalcJobID: jobID, CallbackName: "retrieve"},
	}

	f.cpRepo.On("ListWaiting", mock.Anything, 10).Return([]*domain.ProcessCheckpoint{cp}, nil)
	f.jobRepo.On("GetByID", mock.Anything, jobID).Return(&domain.CalcJob{ID: jobID, State: domain.CalcJobStateRunning, SchedulerRef: "ref"}, nil)
	f.scheduler.On("IsAvailable").Return(false)

	f.poller.Tick(context.Background())

	assert.Equal(t, domain.ProcessStateWaiting, cp.State)
	f.cpRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPoller_Tick_SkipsCheckpointWithoutWaitOn(t *testing.T) {
	f := newPollerFixture()

	cp := &domain.ProcessCheckpoint{ID: uuid.New(), State: domain.ProcessStateWaiting}
	f.cpRepo.On("ListWaiting", mock.Anything, 10).Return([]*domain.ProcessCheckpoint{cp}, nil)

	f.poller.Tick(context.Background())

	f.jobRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestPoller_Run_StopsOnCancel(t *testing.T) {
	f := newPollerFixture()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.poller.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
