package borrowsvc

import (
	"context"
	"time"

	"circulation/model"
	"circulation/util/apperr"
)

type Repo interface {
	Create(ctx context.Context, userID, bookID string, now time.Time, loanPeriod time.Duration) (*model.Borrow, error)
	UpdateDueDate(ctx context.Context, id string, newDue time.Time) (*model.Borrow, error)
	Return(ctx context.Context, id string, now time.Time, finePerDay float64) (*model.Borrow, float64, error)
	List(ctx context.Context, sortAsc bool, q string) ([]model.Borrow, error)
}

type Service interface {
	// Create lends a copy of the book to the user; the repository enforces
	// the capacity invariant atomically.
	Create(ctx context.Context, userID, bookID string) (*model.Borrow, error)

	// UpdateDueDate: admin-only (gated at the transport layer).
	UpdateDueDate(ctx context.Context, id string, newDue time.Time) (*model.Borrow, error)

	// Return closes the loan and reports any fine posted to the user.
	Return(ctx context.Context, id string) (*model.Borrow, float64, error)

	// List returns borrows expanded with book and user, sorted by
	// borrowedAt, optionally filtered by a free-text query.
	List(ctx context.Context, sortOrder, q string) ([]model.Borrow, error)
}

type service struct {
	r          Repo
	loanPeriod time.Duration
	finePerDay float64
	now        func() time.Time
}

func New(r Repo, loanPeriod time.Duration, finePerDay float64) Service {
	return &service{r: r, loanPeriod: loanPeriod, finePerDay: finePerDay, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Create(ctx context.Context, userID, bookID string) (*model.Borrow, error) {
	if userID == "" || bookID == "" {
		return nil, apperr.New(apperr.Validation, "userId and bookId are required")
	}
	return s.r.Create(ctx, userID, bookID, s.now(), s.loanPeriod)
}

func (s *service) UpdateDueDate(ctx context.Context, id string, newDue time.Time) (*model.Borrow, error) {
	if id == "" {
		return nil, apperr.New(apperr.Validation, "borrow id is required")
	}
	if newDue.IsZero() {
		return nil, apperr.New(apperr.Validation, "dueDate is required")
	}
	return s.r.UpdateDueDate(ctx, id, newDue)
}

func (s *service) Return(ctx context.Context, id string) (*model.Borrow, float64, error) {
	if id == "" {
		return nil, 0, apperr.New(apperr.Validation, "borrow id is required")
	}
	return s.r.Return(ctx, id, s.now(), s.finePerDay)
}

func (s *service) List(ctx context.Context, sortOrder, q string) ([]model.Borrow, error) {
	switch sortOrder {
	case "", "desc":
		return s.r.List(ctx, false, q)
	case "asc":
		return s.r.List(ctx, true, q)
	default:
		return nil, apperr.New(apperr.Validation, "sortOrder must be asc or desc")
	}
}
