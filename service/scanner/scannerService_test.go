package scanner_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"circulation/model"
	"circulation/repository/memstore"
	"circulation/service/scanner"

	"github.com/stretchr/testify/require"
)

type flakyNotifier struct {
	failFor map[string]bool
	sent    []string
}

func (n *flakyNotifier) SendOTP(ctx context.Context, email, code, purpose string) error { return nil }

func (n *flakyNotifier) BorrowOverdue(ctx context.Context, b *model.Borrow) error {
	if n.failFor[b.ID] {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, b.ID)
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func seedOverdue(t *testing.T, s *memstore.Store, count int) []string {
	t.Helper()
	ctx := context.Background()
	b := &model.Book{Title: "Dune", Author: "Herbert", Copies: int64(count)}
	require.NoError(t, s.Books().Create(ctx, b))

	past := time.Now().UTC().Add(-72 * time.Hour)
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		u := &model.User{Email: string(rune('a'+i)) + "@example.com"}
		require.NoError(t, s.Users().Create(ctx, u))
		br, err := s.Borrows().Create(ctx, u.ID, b.ID, past, 24*time.Hour)
		require.NoError(t, err)
		ids = append(ids, br.ID)
	}
	return ids
}

func TestSweep_NotifiesOncePerBorrow(t *testing.T) {
	store := memstore.New()
	seedOverdue(t, store, 2)

	n := &flakyNotifier{}
	sc := scanner.New(store.Borrows(), n, discard())

	handled, err := sc.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, handled)
	require.Len(t, n.sent, 2)

	// Repeat sweeps are idempotent.
	handled, err = sc.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, handled)
	require.Len(t, n.sent, 2)
}

func TestSweep_RetriesFailedNotifications(t *testing.T) {
	store := memstore.New()
	ids := seedOverdue(t, store, 2)

	n := &flakyNotifier{failFor: map[string]bool{ids[0]: true}}
	sc := scanner.New(store.Borrows(), n, discard())

	handled, err := sc.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, handled)

	// The failed borrow is picked up again once delivery recovers; the
	// ledger itself was never touched.
	n.failFor = nil
	handled, err = sc.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, handled)
	require.ElementsMatch(t, ids, n.sent)
}
