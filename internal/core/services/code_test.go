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

func TestCodeService_Create(t *testing.T) {
	repo := new(testutil.MockCodeRepo)
	computerRepo := new(testutil.MockComputerRepo)
	svc := NewCodeService(repo, computerRepo)

	computerID := uuid.New()
	computerRepo.On("GetByID", mock.Anything, computerID).Return(&domain.Computer{ID: computerID, Name: "daint"}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Code")).Return(nil)

	code, err := svc.Create(context.Background(), computerID, "pw", "", "/usr/bin/pw.x", "", "quantumespresso.pw", "", "", nil)
	assert.NoError(t, err)
	assert.Equal(t, "pw", code.Name)
	assert.Equal(t, "daint", code.ComputerName)
	assert.NotNil(t, code.Environment)
}

func TestCodeService_Create_ComputerNotFound(t *testing.T) {
	repo := new(testutil.MockCodeRepo)
	computerRepo := new(testutil.MockComputerRepo)
	svc := NewCodeService(repo, computerRepo)

	computerID := uuid.New()
	computerRepo.On("GetByID", mock.Anything, computerID).Return(nil, domain.ErrComputerNotFound)

	_, err := svc.Create(context.Background(), computerID, "pw", "", "/usr/bin/pw.x", "", "", "", "", nil)
	assert.ErrorIs(t, err, domain.ErrComputerNotFound)
}

func TestCodeService_Create_NoExecutable(t *testing.T) {
	svc := NewCodeService(new(testutil.MockCodeRepo), new(testutil.MockComputerRepo))

	_, err := svc.Create(context.Background(), uuid.New(), "pw", "", "", "", "", "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidExecutable)
}

func TestCodeService_GetByLabel(t *testing.T) {
	repo := new(testutil.MockCodeRepo)
	svc := NewCodeService(repo, new(testutil.MockComputerRepo))

	expected := &domain.Code{ID: uuid.New(), Name: "pw", ComputerName: "daint"}
	repo.On("GetByLabel", mock.Anything, "daint", "pw").Return(expected, nil)

	code, err := svc.GetByLabel(context.Background(), "daint", "pw")
	assert.NoError(t, err)
	assert.Equal(t, "pw", code.Name)
}

func TestCodeService_Update_CannotClearExecutable(t *testing.T) {
	repo := new(testutil.MockCodeRepo)
	svc := NewCodeService(repo, new(testutil.MockComputerRepo))

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Code{ID: id, ExecutablePath: "/usr/bin/pw.x"}, nil)

	_, err := svc.Update(context.Background(), id, map[string]interface{}{"executable_path": ""})
	assert.ErrorIs(t, err, domain.ErrInvalidExecutable)
}

func TestCodeService_Update(t *testing.T) {
	repo := new(testutil.MockCodeRepo)
	svc := NewCodeService(repo, new(testutil.MockComputerRepo))

	id := uuid.New()
	existing := &domain.Code{ID: id, ExecutablePath: "/usr/bin/pw.x"}
	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Code")).Return(nil)

	updated, err := svc.Update(context.Background(), id, map[string]interface{}{"prepend_text": "module load espresso"})
	assert.NoError(t, err)
	assert.Equal(t, "module load espresso", updated.PrependText)
}
