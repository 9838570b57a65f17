package borrowrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"circulation/model"
	"circulation/util/apperr"

	"github.com/google/uuid"
)

type Repo interface {
	// Create performs the atomic check-and-insert: count active loans under
	// the book's row lock, reject with a CAPACITY error when none remain.
	Create(ctx context.Context, userID, bookID string, now time.Time, loanPeriod time.Duration) (*model.Borrow, error)

	// UpdateDueDate edits the due date of a not-yet-returned borrow.
	UpdateDueDate(ctx context.Context, id string, newDue time.Time) (*model.Borrow, error)

	// Return closes the borrow and posts any late fine to the user's
	// balance in the same transaction. Returns the fine posted.
	Return(ctx context.Context, id string, now time.Time, finePerDay float64) (*model.Borrow, float64, error)

	List(ctx context.Context, sortAsc bool, q string) ([]model.Borrow, error)

	// Scanner support.
	ListOverdueUnnotified(ctx context.Context, now time.Time) ([]model.Borrow, error)
	MarkOverdueNotified(ctx context.Context, ids []string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, userID, bookID string, now time.Time, loanPeriod time.Duration) (b *model.Borrow, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Row lock serializes concurrent creates on the same book, so two
	// requests for the last copy cannot both pass the count below.
	var copies int64
	err = tx.QueryRowContext(ctx, `SELECT copies FROM books WHERE id = $1 FOR UPDATE`, bookID).Scan(&copies)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "book not found")
	}
	if err != nil {
		return nil, err
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT true FROM users WHERE id = $1`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}

	var active int64
	err = tx.QueryRowContext(ctx, `
		SELECT count(*) FROM borrows
		WHERE book_id = $1 AND returned_at IS NULL`, bookID).Scan(&active)
	if err != nil {
		return nil, err
	}
	if copies-active <= 0 {
		return nil, apperr.New(apperr.Capacity, "no copies available")
	}

	b = &model.Borrow{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueDate:    now.Add(loanPeriod),
		Status:     model.BorrowActive,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO borrows (id, user_id, book_id, borrowed_at, due_date)
		VALUES ($1,$2,$3,$4,$5)`,
		b.ID, b.UserID, b.BookID, b.BorrowedAt, b.DueDate)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) UpdateDueDate(ctx context.Context, id string, newDue time.Time) (b *model.Borrow, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b = &model.Borrow{ID: id}
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, book_id, borrowed_at, due_date, returned_at
		FROM borrows WHERE id = $1 FOR UPDATE`, id,
	).Scan(&b.UserID, &b.BookID, &b.BorrowedAt, &b.DueDate, &b.ReturnedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "borrow not found")
	}
	if err != nil {
		return nil, err
	}
	if b.ReturnedAt != nil {
		return nil, apperr.New(apperr.State, "borrow already returned")
	}
	if !newDue.After(b.BorrowedAt) {
		return nil, apperr.New(apperr.Validation, "due date must be after borrow date")
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE borrows SET due_date = $2, overdue_notified = FALSE
		WHERE id = $1`, id, newDue); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	b.DueDate = newDue
	b.Status = b.StatusAt(time.Now().UTC())
	return b, nil
}

func (r *repo) Return(ctx context.Context, id string, now time.Time, finePerDay float64) (b *model.Borrow, fine float64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b = &model.Borrow{ID: id}
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, book_id, borrowed_at, due_date, returned_at
		FROM borrows WHERE id = $1 FOR UPDATE`, id,
	).Scan(&b.UserID, &b.BookID, &b.BorrowedAt, &b.DueDate, &b.ReturnedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, apperr.New(apperr.NotFound, "borrow not found")
	}
	if err != nil {
		return nil, 0, err
	}
	if b.ReturnedAt != nil {
		return nil, 0, apperr.New(apperr.State, "borrow already returned")
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE borrows SET returned_at = $2 WHERE id = $1`, id, now); err != nil {
		return nil, 0, err
	}

	// Fine posting rides the same transaction as the status flip; a
	// half-applied return is never observable.
	fine = model.FineAmount(b.DueDate, now, finePerDay)
	if fine > 0 {
		if _, err = tx.ExecContext(ctx, `
			UPDATE users SET fine = fine + $2 WHERE id = $1`, b.UserID, fine); err != nil {
			return nil, 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, 0, err
	}
	b.ReturnedAt = &now
	b.Status = model.BorrowReturned
	return b, fine, nil
}

func (r *repo) List(ctx context.Context, sortAsc bool, q string) ([]model.Borrow, error) {
	order := "DESC"
	if sortAsc {
		order = "ASC"
	}
	stmt := `
		SELECT br.id, br.user_id, br.book_id, br.borrowed_at, br.due_date, br.returned_at,
		       u.email, u.name, u.role, u.fine, u.profile_photo, u.created_at,
		       b.title, b.author, b.publisher, b.copies, b.created_at, b.updated_at
		FROM borrows br
		JOIN users u ON u.id = br.user_id
		JOIN books b ON b.id = br.book_id
		WHERE $1 = ''
		   OR b.title ILIKE '%'||$1||'%'
		   OR b.author ILIKE '%'||$1||'%'
		   OR b.publisher ILIKE '%'||$1||'%'
		   OR u.name ILIKE '%'||$1||'%'
		   OR u.email ILIKE '%'||$1||'%'
		ORDER BY br.borrowed_at ` + order
	rows, err := r.db.QueryContext(ctx, stmt, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var out []model.Borrow
	for rows.Next() {
		var br model.Borrow
		u := &model.User{}
		b := &model.Book{}
		if err := rows.Scan(
			&br.ID, &br.UserID, &br.BookID, &br.BorrowedAt, &br.DueDate, &br.ReturnedAt,
			&u.Email, &u.Name, &u.Role, &u.Fine, &u.ProfilePhoto, &u.CreatedAt,
			&b.Title, &b.Author, &b.Publisher, &b.Copies, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u.ID, b.ID = br.UserID, br.BookID
		br.User, br.Book = u, b
		br.Status = br.StatusAt(now)
		out = append(out, br)
	}
	return out, rows.Err()
}

func (r *repo) ListOverdueUnnotified(ctx context.Context, now time.Time) ([]model.Borrow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, book_id, borrowed_at, due_date
		FROM borrows
		WHERE returned_at IS NULL AND due_date < $1 AND NOT overdue_notified
		ORDER BY due_date`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Borrow
	for rows.Next() {
		var b model.Borrow
		if err := rows.Scan(&b.ID, &b.UserID, &b.BookID, &b.BorrowedAt, &b.DueDate); err != nil {
			return nil, err
		}
		b.Status = model.BorrowOverdue
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) MarkOverdueNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE borrows SET overdue_notified = TRUE WHERE id = ANY($1)`, ids)
	return err
}
