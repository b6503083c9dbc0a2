package errs

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class string
	}{
		{"validation", ErrNotYourTurn, "validation"},
		{"wrapped validation", errors.Wrapf(ErrEncounterPending, "retry in %d seconds", 30), "validation"},
		{"fmt wrapped", fmt.Errorf("apply move: %w", ErrUnknownMove), "validation"},
		{"state", ErrUltimateUsed, "state"},
		{"transient", Transient(errors.New("connection refused"), "load player"), "transient"},
		{"expired", ErrExpired, "expired"},
		{"other", errors.New("boom"), "internal"},
		{"nil", nil, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.class, Class(tt.err))
		})
	}
}

func TestSentinelsKeepIdentity(t *testing.T) {
	assert.False(t, errors.Is(ErrNotYourTurn, ErrSessionNotFound))
	assert.False(t, errors.Is(ErrUltimateUsed, ErrTargetDefeated))

	err := errors.Wrap(ErrLocked, "explore")
	assert.True(t, errors.Is(err, ErrLocked))
	assert.False(t, errors.Is(err, ErrNoTeam))
}

func TestTransientKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Transient(cause, "load player 7")

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "load player 7")
	assert.Nil(t, Transient(nil, "noop"))
}
