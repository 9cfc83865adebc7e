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

func TestComputerService_Create(t *testing.T) {
	repo := new(testutil.MockComputerRepo)
	svc := NewComputerService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Computer")).Return(nil)

	computer, err := svc.Create(context.Background(), "daint", "daint.cscs.ch", "", "", "/scratch/workdir")
	assert.NoError(t, err)
	assert.Equal(t, domain.SchedulerKubernetes, computer.SchedulerType)
	assert.True(t, computer.Enabled)
}

func TestComputerService_Create_Validation(t *testing.T) {
	svc := NewComputerService(new(testutil.MockComputerRepo))

	tests := []struct {
		name     string
		computer []string
		expected error
	}{
		{"empty name", []string{"", "host", "/work"}, domain.ErrInvalidComputerName},
		{"empty hostname", []string{"daint", "", "/work"}, domain.ErrInvalidHostname},
		{"empty work dir", []string{"daint", "host", ""}, domain.ErrInvalidWorkDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.computer[0], tt.computer[1], "", "", tt.computer[2])
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestComputerService_Create_UnsupportedScheduler(t *testing.T) {
	svc := NewComputerService(new(testutil.MockComputerRepo))

	_, err := svc.Create(context.Background(), "daint", "host", "", "lsf", "/work")
	assert.ErrorIs(t, err, domain.ErrUnsupportedScheduler)
}

func TestComputerService_Update(t *testing.T) {
	repo := new(testutil.MockComputerRepo)
	svc := NewComputerService(repo)

	id := uuid.New()
	existing := &domain.Computer{ID: id, Name: "daint", WorkDir: "/work", Enabled: true}
	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Computer")).Return(nil)

	updated, err := svc.Update(context.Background(), id, map[string]interface{}{"enabled": false})
	assert.NoError(t, err)
	assert.False(t, updated.Enabled)
}

func TestComputerService_Delete_WithCodes(t *testing.T) {
	repo := new(testutil.MockComputerRepo)
	svc := NewComputerService(repo)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Computer{ID: id}, nil)
	repo.On("CountCodes", mock.Anything, id).Return(3, nil)

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrComputerHasCodes)
	repo.AssertNotCalled(t, "Delete", mock.Anything, id)
}

func TestComputerService_Delete(t *testing.T) {
	repo := new(testutil.MockComputerRepo)
	svc := NewComputerService(repo)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Computer{ID: id}, nil)
	repo.On("CountCodes", mock.Anything, id).Return(0, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	err := svc.Delete(context.Background(), id)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
