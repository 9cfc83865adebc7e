package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcJobState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    CalcJobState
		to      CalcJobState
		allowed bool
	}{
		{CalcJobStateNew, CalcJobStateSubmitting, true},
		{CalcJobStateNew, CalcJobStateExcepted, true},
		{CalcJobStateNew, CalcJobStateRunning, false},
		{CalcJobStateSubmitting, CalcJobStateWithScheduler, true},
		{CalcJobStateWithScheduler, CalcJobStateRunning, true},
		{CalcJobStateWithScheduler, CalcJobStateRetrieving, true},
		{CalcJobStateRunning, CalcJobStateRetrieving, true},
		{CalcJobStateRunning, CalcJobStateFinished, false},
		{CalcJobStateRetrieving, CalcJobStateFinished, true},
		{CalcJobStateFinished, CalcJobStateRunning, false},
		{CalcJobStateFailed, CalcJobStateSubmitting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestCalcJobState_IsTerminal(t *testing.T) {
	assert.True(t, CalcJobStateFinished.IsTerminal())
	assert.True(t, CalcJobStateFailed.IsTerminal())
	assert.True(t, CalcJobStateExcepted.IsTerminal())
	assert.False(t, CalcJobStateRunning.IsTerminal())
	assert.False(t, CalcJobStateNew.IsTerminal())
}

func TestValidateCalcJobState(t *testing.T) {
	assert.NoError(t, ValidateCalcJobState(CalcJobStateRunning))
	assert.ErrorIs(t, ValidateCalcJobState("PARKED"), ErrInvalidJobState)
}
