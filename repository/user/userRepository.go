package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"circulation/model"
	"circulation/util/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, q string) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, name, photo *string) error
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const userCols = `id, email, name, role, fine, profile_photo, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Fine, &u.ProfilePhoto, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = model.RoleMember
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		u.ID, u.Email, u.Name, u.Role, u.PasswordHash,
	).Scan(&u.CreatedAt)
	return mapDuplicateEmail(err)
}

func (r *repo) ByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *repo) List(ctx context.Context, q string) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userCols+` FROM users
		WHERE $1 = '' OR name ILIKE '%'||$1||'%' OR email ILIKE '%'||$1||'%'
		ORDER BY created_at DESC`, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *repo) UpdateProfile(ctx context.Context, id string, name, photo *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
		    profile_photo = COALESCE($3, profile_photo)
		WHERE id = $1`, id, name, photo)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

func (r *repo) UpdateEmail(ctx context.Context, id, email string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET email = $2 WHERE id = $1`, id, email)
	if err != nil {
		return mapDuplicateEmail(err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

func (r *repo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// Delete refuses while the ledger holds any active borrow for the user.
// Deletion must fail, not cascade.
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

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT true FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return err
	}

	var active int64
	err = tx.QueryRowContext(ctx, `
		SELECT count(*) FROM borrows
		WHERE user_id = $1 AND returned_at IS NULL`, id).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperr.New(apperr.Conflict, "user has active borrows")
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM borrows WHERE user_id = $1`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func mapDuplicateEmail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.New(apperr.Conflict, "email already registered")
	}
	return err
}
