package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"bloghive/internal/models"
)

// UserRepository is the credential store. Get* methods return (nil, nil) when the row is absent.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) (*models.User, error)
	SetBanned(ctx context.Context, id int, banned bool) (*models.User, error)
	DeleteAccount(ctx context.Context, id int) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	ListRecipients(ctx context.Context, ids []int) ([]*models.User, error)

	// refresh helpers
	UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, name, email, password, COALESCE(banned, FALSE), banned_at, COALESCE(is_admin, FALSE), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var bannedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Banned, &bannedAt, &u.IsAdmin, &u.CreatedAt); err != nil {
		return nil, err
	}
	if bannedAt.Valid {
		t := bannedAt.Time
		u.BannedAt = &t
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, q, user.Name, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

// GetByEmail matches the email as stored, case-sensitive.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (*models.User, error) {
	q := `UPDATE users SET password = $1 WHERE email = $2 RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, passwordHash, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user update password: %w", err)
	}
	return u, nil
}

func (r *userRepository) SetBanned(ctx context.Context, id int, banned bool) (*models.User, error) {
	q := `
		UPDATE users
		SET banned = $1,
		    banned_at = CASE WHEN $1 THEN NOW() ELSE NULL END
		WHERE id = $2
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, banned, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user set banned: %w", err)
	}
	return u, nil
}

// DeleteAccount removes the user together with everything they own or touched.
// Returns the number of user rows deleted; 0 means nothing was changed.
func (r *userRepository) DeleteAccount(ctx context.Context, id int) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("delete account begin: %w", err)
	}
	defer tx.Rollback()

	dependents := []string{
		`DELETE FROM user_notifications WHERE user_id = $1`,
		`DELETE FROM likes WHERE user_id = $1 OR blog_id IN (SELECT id FROM blog_posts WHERE author_id = $1)`,
		`DELETE FROM comments WHERE user_id = $1 OR blog_id IN (SELECT id FROM blog_posts WHERE author_id = $1)`,
		`DELETE FROM views WHERE blog_id IN (SELECT id FROM blog_posts WHERE author_id = $1)`,
		`DELETE FROM blog_posts WHERE author_id = $1`,
	}
	for _, q := range dependents {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return 0, fmt.Errorf("delete account dependents: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete account user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete account rows: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete account commit: %w", err)
	}
	return n, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("user count: %w", err)
	}
	return n, nil
}

// ListRecipients returns non-banned users; with empty ids it returns all of them.
func (r *userRepository) ListRecipients(ctx context.Context, ids []int) ([]*models.User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(ids) == 0 {
		q := `SELECT ` + userColumns + ` FROM users WHERE COALESCE(banned, FALSE) = FALSE ORDER BY id`
		rows, err = r.DB.QueryContext(ctx, q)
	} else {
		arr := make(pq.Int64Array, 0, len(ids))
		for _, id := range ids {
			arr = append(arr, int64(id))
		}
		q := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) AND COALESCE(banned, FALSE) = FALSE ORDER BY id`
		rows, err = r.DB.QueryContext(ctx, q, arr)
	}
	if err != nil {
		return nil, fmt.Errorf("user recipients: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]*models.User, error) {
	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	const q = `UPDATE users SET refresh_token = $1, refresh_expires_at = $2 WHERE id = $3`
	if _, err := r.DB.ExecContext(ctx, q, token, expiresAt, userID); err != nil {
		return fmt.Errorf("user update refresh: %w", err)
	}
	return nil
}

// RotateRefresh swaps a live refresh token for a new one; (nil, nil) if the old one is unknown or expired.
func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	q := `
		UPDATE users
		SET refresh_token = $1, refresh_expires_at = $2
		WHERE refresh_token = $3 AND refresh_expires_at > NOW()
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, newToken, newExpiresAt, oldToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user rotate refresh: %w", err)
	}
	return u, nil
}
