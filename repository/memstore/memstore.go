// Package memstore is an in-process implementation of the repository
// interfaces, used by tests and when no DATABASE_URL is configured. The
// single store mutex is the mutual-exclusion scope for the check-and-insert
// on borrow creation; it is never held across collaborator I/O.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"circulation/model"
	"circulation/util/apperr"

	"github.com/google/uuid"
)

type Store struct {
	mu          sync.RWMutex
	books       map[string]*model.Book
	users       map[string]*model.User
	borrows     map[string]*model.Borrow
	notified    map[string]bool
	bookOrder   []string
	userOrder   []string
	borrowOrder []string
}

func New() *Store {
	return &Store{
		books:    make(map[string]*model.Book),
		users:    make(map[string]*model.User),
		borrows:  make(map[string]*model.Borrow),
		notified: make(map[string]bool),
	}
}

func (s *Store) Books() *BookRepo     { return &BookRepo{s} }
func (s *Store) Users() *UserRepo     { return &UserRepo{s} }
func (s *Store) Borrows() *BorrowRepo { return &BorrowRepo{s} }

// activeLoans must be called with the lock held.
func (s *Store) activeLoans(bookID string) int64 {
	var n int64
	for _, b := range s.borrows {
		if b.BookID == bookID && b.ReturnedAt == nil {
			n++
		}
	}
	return n
}

func (s *Store) activeLoansByUser(userID string) int64 {
	var n int64
	for _, b := range s.borrows {
		if b.UserID == userID && b.ReturnedAt == nil {
			n++
		}
	}
	return n
}

// ----- books -----

type BookRepo struct{ s *Store }

func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = uuid.NewString()
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	b.Available, b.IsAvailable = b.Copies, true
	cp := *b
	r.s.books[b.ID] = &cp
	r.s.bookOrder = append(r.s.bookOrder, b.ID)
	return nil
}

func (r *BookRepo) annotate(b *model.Book) model.Book {
	out := *b
	out.Available = b.Copies - r.s.activeLoans(b.ID)
	if out.Available < 0 {
		out.Available = 0
	}
	out.IsAvailable = out.Available > 0
	return out
}

func (r *BookRepo) List(ctx context.Context, q string) ([]model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.Book
	// Newest first, matching the postgres repo's created_at DESC.
	for i := len(r.s.bookOrder) - 1; i >= 0; i-- {
		b := r.s.books[r.s.bookOrder[i]]
		if model.BookMatches(b, q) {
			out = append(out, r.annotate(b))
		}
	}
	return out, nil
}

func (r *BookRepo) ByID(ctx context.Context, id string) (*model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "book not found")
	}
	out := r.annotate(b)
	return &out, nil
}

func (r *BookRepo) Update(ctx context.Context, b *model.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.books[b.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "book not found")
	}
	if b.Copies < r.s.activeLoans(b.ID) {
		return apperr.New(apperr.Conflict, "copies cannot be fewer than active loans")
	}
	cur.Title, cur.Author, cur.Publisher, cur.Copies = b.Title, b.Author, b.Publisher, b.Copies
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *BookRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.books[id]; !ok {
		return apperr.New(apperr.NotFound, "book not found")
	}
	if r.s.activeLoans(id) > 0 {
		return apperr.New(apperr.Conflict, "book has active borrows")
	}
	delete(r.s.books, id)
	r.s.bookOrder = remove(r.s.bookOrder, id)
	for bid, b := range r.s.borrows {
		if b.BookID == id {
			delete(r.s.borrows, bid)
			r.s.borrowOrder = remove(r.s.borrowOrder, bid)
		}
	}
	return nil
}

// ----- users -----

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.users {
		if strings.EqualFold(ex.Email, u.Email) {
			return apperr.New(apperr.Conflict, "email already registered")
		}
	}
	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = model.RoleMember
	}
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.s.users[u.ID] = &cp
	r.s.userOrder = append(r.s.userOrder, u.ID)
	return nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (r *UserRepo) List(ctx context.Context, q string) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.User
	for i := len(r.s.userOrder) - 1; i >= 0; i-- {
		u := r.s.users[r.s.userOrder[i]]
		if model.UserMatches(u, q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, name, photo *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if name != nil {
		u.Name = *name
	}
	if photo != nil {
		u.ProfilePhoto = photo
	}
	return nil
}

func (r *UserRepo) UpdateEmail(ctx context.Context, id, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	for oid, ex := range r.s.users {
		if oid != id && strings.EqualFold(ex.Email, email) {
			return apperr.New(apperr.Conflict, "email already registered")
		}
	}
	u.Email = email
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if r.s.activeLoansByUser(id) > 0 {
		return apperr.New(apperr.Conflict, "user has active borrows")
	}
	delete(r.s.users, id)
	r.s.userOrder = remove(r.s.userOrder, id)
	for bid, b := range r.s.borrows {
		if b.UserID == id {
			delete(r.s.borrows, bid)
			r.s.borrowOrder = remove(r.s.borrowOrder, bid)
		}
	}
	return nil
}

// ----- borrows -----

type BorrowRepo struct{ s *Store }

func (r *BorrowRepo) Create(ctx context.Context, userID, bookID string, now time.Time, loanPeriod time.Duration) (*model.Borrow, error) {
	// Check-and-insert under the store lock: exactly one of two racing
	// requests for the last copy can win.
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	book, ok := r.s.books[bookID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "book not found")
	}
	if _, ok := r.s.users[userID]; !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if book.Copies-r.s.activeLoans(bookID) <= 0 {
		return nil, apperr.New(apperr.Capacity, "no copies available")
	}

	b := &model.Borrow{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueDate:    now.Add(loanPeriod),
		Status:     model.BorrowActive,
	}
	cp := *b
	r.s.borrows[b.ID] = &cp
	r.s.borrowOrder = append(r.s.borrowOrder, b.ID)
	return b, nil
}

func (r *BorrowRepo) UpdateDueDate(ctx context.Context, id string, newDue time.Time) (*model.Borrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.borrows[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "borrow not found")
	}
	if b.ReturnedAt != nil {
		return nil, apperr.New(apperr.State, "borrow already returned")
	}
	if !newDue.After(b.BorrowedAt) {
		return nil, apperr.New(apperr.Validation, "due date must be after borrow date")
	}
	b.DueDate = newDue
	delete(r.s.notified, id)
	out := *b
	out.Status = out.StatusAt(time.Now().UTC())
	return &out, nil
}

func (r *BorrowRepo) Return(ctx context.Context, id string, now time.Time, finePerDay float64) (*model.Borrow, float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.borrows[id]
	if !ok {
		return nil, 0, apperr.New(apperr.NotFound, "borrow not found")
	}
	if b.ReturnedAt != nil {
		return nil, 0, apperr.New(apperr.State, "borrow already returned")
	}
	b.ReturnedAt = &now

	// Same critical section as the status flip: fine and return are one
	// logical transaction.
	fine := model.FineAmount(b.DueDate, now, finePerDay)
	if fine > 0 {
		if u, ok := r.s.users[b.UserID]; ok {
			u.Fine += fine
		}
	}
	out := *b
	out.Status = model.BorrowReturned
	return &out, fine, nil
}

func (r *BorrowRepo) List(ctx context.Context, sortAsc bool, q string) ([]model.Borrow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := time.Now().UTC()
	var out []model.Borrow
	for _, id := range r.s.borrowOrder {
		b := r.s.borrows[id]
		cp := *b
		if u, ok := r.s.users[b.UserID]; ok {
			uc := *u
			cp.User = &uc
		}
		if bk, ok := r.s.books[b.BookID]; ok {
			bc := r.s.Books().annotate(bk)
			cp.Book = &bc
		}
		if !model.BorrowMatches(&cp, q) {
			continue
		}
		cp.Status = cp.StatusAt(now)
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if sortAsc {
			return out[i].BorrowedAt.Before(out[j].BorrowedAt)
		}
		return out[i].BorrowedAt.After(out[j].BorrowedAt)
	})
	return out, nil
}

func (r *BorrowRepo) ListOverdueUnnotified(ctx context.Context, now time.Time) ([]model.Borrow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.Borrow
	for _, id := range r.s.borrowOrder {
		b := r.s.borrows[id]
		if b.ReturnedAt == nil && now.After(b.DueDate) && !r.s.notified[id] {
			cp := *b
			cp.Status = model.BorrowOverdue
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *BorrowRepo) MarkOverdueNotified(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		r.s.notified[id] = true
	}
	return nil
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
