package otp

import (
	"context"
	"testing"

	"circulation/util/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCreateAndVerify(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	code, err := s.Create(ctx, "user-1", PurposeEmailChange, "new@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	payload, err := s.Verify(ctx, "user-1", PurposeEmailChange, code)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", payload)

	// Consumed on success.
	_, err = s.Verify(ctx, "user-1", PurposeEmailChange, code)
	require.True(t, apperr.Is(err, apperr.State))
}

func TestVerify_WrongCode(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	code, err := s.Create(ctx, "user-1", PurposePasswordChange, "")
	require.NoError(t, err)

	_, err = s.Verify(ctx, "user-1", PurposePasswordChange, "000000")
	require.True(t, apperr.Is(err, apperr.Validation))

	// The right code still works while attempts remain.
	_, err = s.Verify(ctx, "user-1", PurposePasswordChange, code)
	require.NoError(t, err)
}

func TestVerify_AttemptBudget(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	code, err := s.Create(ctx, "user-1", PurposeEmailChange, "x@example.com")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = s.Verify(ctx, "user-1", PurposeEmailChange, "999999")
		require.Error(t, err)
	}
	// Budget exhausted: even the correct code is refused now.
	_, err = s.Verify(ctx, "user-1", PurposeEmailChange, code)
	require.True(t, apperr.Is(err, apperr.State))
}

func TestCreate_ResendThrottle(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "user-1", PurposeEmailChange, "a@example.com")
	require.NoError(t, err)

	_, err = s.Create(ctx, "user-1", PurposeEmailChange, "a@example.com")
	require.True(t, apperr.Is(err, apperr.State))

	mr.FastForward(s.resendAfter)
	_, err = s.Create(ctx, "user-1", PurposeEmailChange, "a@example.com")
	require.NoError(t, err)
}
