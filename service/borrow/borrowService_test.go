package borrowsvc_test

import (
	"context"
	"testing"
	"time"

	"circulation/model"
	borrowsvc "circulation/service/borrow"
	"circulation/util/apperr"
)

type repoMock struct {
	createFn  func(ctx context.Context, userID, bookID string, now time.Time, loanPeriod time.Duration) (*model.Borrow, error)
	updateFn  func(ctx context.Context, id string, newDue time.Time) (*model.Borrow, error)
	returnFn  func(ctx context.Context, id string, now time.Time, finePerDay float64) (*model.Borrow, float64, error)
	listFn    func(ctx context.Context, sortAsc bool, q string) ([]model.Borrow, error)
	lastAsc   bool
	lastQuery string
}

func (m *repoMock) Create(ctx context.Context, userID, bookID string, now time.Time, loanPeriod time.Duration) (*model.Borrow, error) {
	return m.createFn(ctx, userID, bookID, now, loanPeriod)
}
func (m *repoMock) UpdateDueDate(ctx context.Context, id string, newDue time.Time) (*model.Borrow, error) {
	return m.updateFn(ctx, id, newDue)
}
func (m *repoMock) Return(ctx context.Context, id string, now time.Time, finePerDay float64) (*model.Borrow, float64, error) {
	return m.returnFn(ctx, id, now, finePerDay)
}
func (m *repoMock) List(ctx context.Context, sortAsc bool, q string) ([]model.Borrow, error) {
	m.lastAsc, m.lastQuery = sortAsc, q
	if m.listFn != nil {
		return m.listFn(ctx, sortAsc, q)
	}
	return nil, nil
}

const (
	loanPeriod = 14 * 24 * time.Hour
	finePerDay = 10.0
)

func TestCreate_RequiresIDs(t *testing.T) {
	s := borrowsvc.New(&repoMock{}, loanPeriod, finePerDay)
	for _, pair := range [][2]string{{"", "book-1"}, {"user-1", ""}, {"", ""}} {
		if _, err := s.Create(context.Background(), pair[0], pair[1]); apperr.KindOf(err) != apperr.Validation {
			t.Fatalf("Create(%q,%q): got %v; want validation error", pair[0], pair[1], err)
		}
	}
}

func TestCreate_UsesConfiguredLoanPeriod(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, userID, bookID string, now time.Time, period time.Duration) (*model.Borrow, error) {
			if period != loanPeriod {
				t.Fatalf("loan period = %v; want %v", period, loanPeriod)
			}
			return &model.Borrow{ID: "br-1", UserID: userID, BookID: bookID, BorrowedAt: now, DueDate: now.Add(period)}, nil
		},
	}
	s := borrowsvc.New(m, loanPeriod, finePerDay)
	b, err := s.Create(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.DueDate.Sub(b.BorrowedAt); got != loanPeriod {
		t.Fatalf("due offset = %v; want %v", got, loanPeriod)
	}
}

func TestReturn_UsesConfiguredFineRate(t *testing.T) {
	m := &repoMock{
		returnFn: func(ctx context.Context, id string, now time.Time, rate float64) (*model.Borrow, float64, error) {
			if rate != finePerDay {
				t.Fatalf("fine rate = %v; want %v", rate, finePerDay)
			}
			return &model.Borrow{ID: id, Status: model.BorrowReturned}, 30, nil
		},
	}
	s := borrowsvc.New(m, loanPeriod, finePerDay)
	b, fine, err := s.Return(context.Background(), "br-1")
	if err != nil || fine != 30 || b.Status != model.BorrowReturned {
		t.Fatalf("got %+v fine=%v err=%v", b, fine, err)
	}
}

func TestList_SortOrder(t *testing.T) {
	m := &repoMock{}
	s := borrowsvc.New(m, loanPeriod, finePerDay)
	ctx := context.Background()

	if _, err := s.List(ctx, "asc", "dune"); err != nil {
		t.Fatalf("asc: %v", err)
	}
	if !m.lastAsc || m.lastQuery != "dune" {
		t.Fatalf("asc not forwarded: asc=%v q=%q", m.lastAsc, m.lastQuery)
	}

	if _, err := s.List(ctx, "", ""); err != nil {
		t.Fatalf("default: %v", err)
	}
	if m.lastAsc {
		t.Fatal("default order must be descending")
	}

	if _, err := s.List(ctx, "sideways", ""); apperr.KindOf(err) != apperr.Validation {
		t.Fatal("bad sortOrder must be a validation error")
	}
}
