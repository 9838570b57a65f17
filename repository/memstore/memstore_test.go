package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"circulation/model"
	"circulation/util/apperr"

	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, copies int64) (bookID string, userIDs []string) {
	t.Helper()
	ctx := context.Background()
	b := &model.Book{Title: "Dune", Author: "Herbert", Copies: copies}
	require.NoError(t, s.Books().Create(ctx, b))
	for i := 0; i < 10; i++ {
		u := &model.User{Email: string(rune('a'+i)) + "@example.com", Name: "reader"}
		require.NoError(t, s.Users().Create(ctx, u))
		userIDs = append(userIDs, u.ID)
	}
	return b.ID, userIDs
}

// Racing creates for a book with C copies: exactly C win, the rest fail
// with a capacity error, and the active-loan count never exceeds C.
func TestCreateBorrow_CapacityUnderConcurrency(t *testing.T) {
	const copies, attempts = 3, 10

	s := New()
	bookID, users := seed(t, s, copies)
	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Borrows().Create(ctx, users[i], bookID, now, 14*24*time.Hour)
		}(i)
	}
	wg.Wait()

	var ok, capacity int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.Capacity):
			capacity++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, copies, ok)
	require.Equal(t, attempts-copies, capacity)

	book, err := s.Books().ByID(ctx, bookID)
	require.NoError(t, err)
	require.EqualValues(t, 0, book.Available)
	require.False(t, book.IsAvailable)
}

// Book "X" has one copy: A borrows, B is rejected, A returns, B succeeds.
func TestSingleCopyScenario(t *testing.T) {
	s := New()
	bookID, users := seed(t, s, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	a, err := s.Borrows().Create(ctx, users[0], bookID, now, 14*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, model.BorrowActive, a.Status)

	_, err = s.Borrows().Create(ctx, users[1], bookID, now, 14*24*time.Hour)
	require.True(t, apperr.Is(err, apperr.Capacity))

	ret, fine, err := s.Borrows().Return(ctx, a.ID, now.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Equal(t, model.BorrowReturned, ret.Status)
	require.Zero(t, fine)

	_, err = s.Borrows().Create(ctx, users[1], bookID, now, 14*24*time.Hour)
	require.NoError(t, err)
}

func TestReturn_PostsFineAtomically(t *testing.T) {
	s := New()
	bookID, users := seed(t, s, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	b, err := s.Borrows().Create(ctx, users[0], bookID, now, 24*time.Hour)
	require.NoError(t, err)

	// Three days past due at 10/day.
	_, fine, err := s.Borrows().Return(ctx, b.ID, b.DueDate.Add(72*time.Hour), 10)
	require.NoError(t, err)
	require.EqualValues(t, 30, fine)

	u, err := s.Users().ByID(ctx, users[0])
	require.NoError(t, err)
	require.EqualValues(t, 30, u.Fine)

	// Second return is a lifecycle violation and must not double-post.
	_, _, err = s.Borrows().Return(ctx, b.ID, now, 10)
	require.True(t, apperr.Is(err, apperr.State))
	u, _ = s.Users().ByID(ctx, users[0])
	require.EqualValues(t, 30, u.Fine)
}

func TestDeletionGuards(t *testing.T) {
	s := New()
	bookID, users := seed(t, s, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	b, err := s.Borrows().Create(ctx, users[0], bookID, now, 24*time.Hour)
	require.NoError(t, err)

	require.True(t, apperr.Is(s.Books().Delete(ctx, bookID), apperr.Conflict))
	require.True(t, apperr.Is(s.Users().Delete(ctx, users[0]), apperr.Conflict))

	_, _, err = s.Borrows().Return(ctx, b.ID, now, 10)
	require.NoError(t, err)

	require.NoError(t, s.Users().Delete(ctx, users[0]))
	require.NoError(t, s.Books().Delete(ctx, bookID))
}

func TestList_SortAndIdempotentReread(t *testing.T) {
	s := New()
	bookID, users := seed(t, s, 5)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		_, err := s.Borrows().Create(ctx, users[i], bookID, base.Add(time.Duration(i)*time.Minute), 24*time.Hour)
		require.NoError(t, err)
	}

	asc, err := s.Borrows().List(ctx, true, "")
	require.NoError(t, err)
	require.Len(t, asc, 3)
	require.True(t, asc[0].BorrowedAt.Before(asc[2].BorrowedAt))
	require.NotNil(t, asc[0].Book)
	require.NotNil(t, asc[0].User)

	desc, err := s.Borrows().List(ctx, false, "")
	require.NoError(t, err)
	require.Equal(t, asc[0].ID, desc[2].ID)

	again, err := s.Borrows().List(ctx, true, "")
	require.NoError(t, err)
	require.Equal(t, asc, again)
}

func TestUpdateDueDate_ResetsOverdueView(t *testing.T) {
	s := New()
	bookID, users := seed(t, s, 1)
	ctx := context.Background()
	past := time.Now().UTC().Add(-48 * time.Hour)

	b, err := s.Borrows().Create(ctx, users[0], bookID, past, 24*time.Hour)
	require.NoError(t, err)

	rows, err := s.Borrows().List(ctx, true, "")
	require.NoError(t, err)
	require.Equal(t, model.BorrowOverdue, rows[0].Status)

	// Extending the due date flips the derived status back to ACTIVE.
	upd, err := s.Borrows().UpdateDueDate(ctx, b.ID, time.Now().UTC().Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, model.BorrowActive, upd.Status)

	_, err = s.Borrows().UpdateDueDate(ctx, b.ID, past.Add(-time.Hour))
	require.True(t, apperr.Is(err, apperr.Validation))
}
