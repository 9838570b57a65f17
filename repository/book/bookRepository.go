package bookrepo

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
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, q string) ([]model.Book, error)
	ByID(ctx context.Context, id string) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	b.ID = uuid.NewString()
	const q = `
		INSERT INTO books (id, title, author, publisher, copies)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`
	if err := r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.Publisher, b.Copies,
	).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	b.Available = b.Copies
	b.IsAvailable = true
	return nil
}

// selectList derives availability from the ledger on every read.
const selectList = `
	SELECT b.id, b.title, b.author, b.publisher, b.copies, b.created_at, b.updated_at,
	       GREATEST(0, b.copies - COUNT(br.*) FILTER (WHERE br.returned_at IS NULL))::BIGINT AS available
	FROM books b
	LEFT JOIN borrows br ON br.book_id = b.id`

func (r *repo) List(ctx context.Context, q string) ([]model.Book, error) {
	const stmt = selectList + `
	WHERE $1 = ''
	   OR b.title ILIKE '%'||$1||'%'
	   OR b.author ILIKE '%'||$1||'%'
	   OR b.publisher ILIKE '%'||$1||'%'
	GROUP BY b.id
	ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, stmt, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Copies,
			&b.CreatedAt, &b.UpdatedAt, &b.Available,
		); err != nil {
			return nil, err
		}
		b.IsAvailable = b.Available > 0
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id string) (*model.Book, error) {
	const stmt = selectList + `
	WHERE b.id = $1
	GROUP BY b.id`
	var b model.Book
	err := r.db.QueryRowContext(ctx, stmt, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Copies,
		&b.CreatedAt, &b.UpdatedAt, &b.Available,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "book not found")
	}
	if err != nil {
		return nil, err
	}
	b.IsAvailable = b.Available > 0
	return &b, nil
}

func (r *repo) Update(ctx context.Context, b *model.Book) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Capacity may not shrink below the copies currently out on loan.
	var active int64
	err = tx.QueryRowContext(ctx, `
		SELECT count(*) FROM borrows
		WHERE book_id = $1 AND returned_at IS NULL`, b.ID).Scan(&active)
	if err != nil {
		return err
	}
	if b.Copies < active {
		return apperr.New(apperr.Conflict, "copies cannot be fewer than active loans")
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE books
		SET title = $2, author = $3, publisher = $4, copies = $5, updated_at = $6
		WHERE id = $1`,
		b.ID, b.Title, b.Author, b.Publisher, b.Copies, time.Now().UTC())
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.New(apperr.NotFound, "book not found")
	}
	return tx.Commit()
}

func (r *repo) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var copies int64
	err = tx.QueryRowContext(ctx, `SELECT copies FROM books WHERE id = $1 FOR UPDATE`, id).Scan(&copies)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, "book not found")
	}
	if err != nil {
		return err
	}

	var active int64
	err = tx.QueryRowContext(ctx, `
		SELECT count(*) FROM borrows
		WHERE book_id = $1 AND returned_at IS NULL`, id).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperr.New(apperr.Conflict, "book has active borrows")
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM borrows WHERE book_id = $1`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}
