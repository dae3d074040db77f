package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepcycle/internal"
)

type stubBreachChecker struct {
	breached bool
	err      error
}

func (s *stubBreachChecker) IsBreached(_ context.Context, _ string) (bool, error) {
	return s.breached, s.err
}

func TestHashAndCheckPassword(t *testing.T) {
	h, err := NewPasswordHasher(10)
	require.NoError(t, err)

	hash, err := h.HashPassword("correct horse 1")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse 1", hash)

	ok, err := h.CheckPasswordHash("correct horse 1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.CheckPasswordHash("wrong horse 1", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewPasswordHasher_RejectsLowCost(t *testing.T) {
	_, err := NewPasswordHasher(4)
	assert.Error(t, err)
}

func TestValidateStrength_ShapeRules(t *testing.T) {
	p := NewStrengthPolicy(nil, nil, false, internal.NewNopLogger())
	ctx := context.Background()

	assert.ErrorIs(t, p.ValidateStrength(ctx, "short1"), internal.ErrInvalidInput)
	assert.ErrorIs(t, p.ValidateStrength(ctx, "nodigitshere"), internal.ErrInvalidInput)

	long := make([]byte, 80)
	for i := range long {
		long[i] = '1'
	}
	assert.ErrorIs(t, p.ValidateStrength(ctx, string(long)), internal.ErrInvalidInput)

	assert.NoError(t, p.ValidateStrength(ctx, "plausible passphrase 9"))
}

func TestValidateStrength_DenyListBeatsBreachAvailability(t *testing.T) {
	ctx := context.Background()
	// "password123" is rejected whether the breach service works, errors, or
	// is absent entirely.
	for _, breach := range []BreachChecker{
		nil,
		&stubBreachChecker{breached: false},
		&stubBreachChecker{err: errors.New("service down")},
	} {
		p := NewStrengthPolicy(nil, breach, false, internal.NewNopLogger())
		assert.ErrorIs(t, p.ValidateStrength(ctx, "password123"), internal.ErrInvalidInput)
		assert.ErrorIs(t, p.ValidateStrength(ctx, "PASSWORD123"), internal.ErrInvalidInput)
	}
}

func TestValidateStrength_BreachedPasswordRejected(t *testing.T) {
	p := NewStrengthPolicy(nil, &stubBreachChecker{breached: true}, false, internal.NewNopLogger())
	assert.ErrorIs(t, p.ValidateStrength(context.Background(), "leaked hunter 2"), internal.ErrInvalidInput)
}

func TestValidateStrength_FailOpenVersusFailClosed(t *testing.T) {
	ctx := context.Background()
	down := &stubBreachChecker{err: errors.New("service down")}

	open := NewStrengthPolicy(nil, down, false, internal.NewNopLogger())
	assert.NoError(t, open.ValidateStrength(ctx, "plausible passphrase 9"))

	closed := NewStrengthPolicy(nil, down, true, internal.NewNopLogger())
	assert.ErrorIs(t, closed.ValidateStrength(ctx, "plausible passphrase 9"), internal.ErrInvalidInput)
}
