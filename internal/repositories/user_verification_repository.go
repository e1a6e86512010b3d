package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloghive/internal/models"
)

// VerificationRepository хранит OTP-челленджи и незавершённые регистрации.
// Get* возвращают (nil, nil), если записи нет или она истекла.
type VerificationRepository interface {
	IssueChallenge(ctx context.Context, email, code string) error
	IssuePendingRegistration(ctx context.Context, email, fullName, password string) error
	GetChallenge(ctx context.Context, email string) (*models.VerificationChallenge, error)
	GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error)
	RecordFailedAttempt(ctx context.Context, email string) error
	Purge(ctx context.Context, email string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type UserVerificationRepository struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func NewUserVerificationRepository(db *sql.DB, ttl time.Duration) *UserVerificationRepository {
	return &UserVerificationRepository{DB: db, TTL: ttl, Now: time.Now}
}

// IssueChallenge: удаляем прошлый код и кладём новый (последняя запись побеждает).
func (r *UserVerificationRepository) IssueChallenge(ctx context.Context, email, code string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM otp_storage WHERE email = $1`, email); err != nil {
		return fmt.Errorf("otp delete: %w", err)
	}
	now := r.Now()
	const q = `
		INSERT INTO otp_storage (email, otp, attempts, created_at, expires_at)
		VALUES ($1, $2, 0, $3, $4)
	`
	if _, err := r.DB.ExecContext(ctx, q, email, code, now, now.Add(r.TTL)); err != nil {
		return fmt.Errorf("otp insert: %w", err)
	}
	return nil
}

func (r *UserVerificationRepository) IssuePendingRegistration(ctx context.Context, email, fullName, password string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM pending_users WHERE email = $1`, email); err != nil {
		return fmt.Errorf("pending user delete: %w", err)
	}
	now := r.Now()
	const q = `
		INSERT INTO pending_users (email, full_name, password, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.DB.ExecContext(ctx, q, email, fullName, password, now, now.Add(r.TTL)); err != nil {
		return fmt.Errorf("pending user insert: %w", err)
	}
	return nil
}

func (r *UserVerificationRepository) GetChallenge(ctx context.Context, email string) (*models.VerificationChallenge, error) {
	const q = `
		SELECT email, otp, attempts, created_at, expires_at
		FROM otp_storage
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var c models.VerificationChallenge
	err := r.DB.QueryRowContext(ctx, q, email).Scan(&c.Email, &c.Code, &c.Attempts, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("otp get: %w", err)
	}
	if !r.Now().Before(c.ExpiresAt) {
		// ленивое истечение
		if _, err := r.DB.ExecContext(ctx, `DELETE FROM otp_storage WHERE email = $1`, email); err != nil {
			return nil, fmt.Errorf("otp expire: %w", err)
		}
		return nil, nil
	}
	return &c, nil
}

func (r *UserVerificationRepository) GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error) {
	const q = `
		SELECT email, full_name, password, created_at, expires_at
		FROM pending_users
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var p models.PendingRegistration
	err := r.DB.QueryRowContext(ctx, q, email).Scan(&p.Email, &p.FullName, &p.Password, &p.CreatedAt, &p.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pending user get: %w", err)
	}
	if !r.Now().Before(p.ExpiresAt) {
		if _, err := r.DB.ExecContext(ctx, `DELETE FROM pending_users WHERE email = $1`, email); err != nil {
			return nil, fmt.Errorf("pending user expire: %w", err)
		}
		return nil, nil
	}
	return &p, nil
}

// RecordFailedAttempt: +1 попытка. Не атомарно относительно параллельной проверки.
func (r *UserVerificationRepository) RecordFailedAttempt(ctx context.Context, email string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE otp_storage SET attempts = attempts + 1 WHERE email = $1`, email); err != nil {
		return fmt.Errorf("otp increment attempts: %w", err)
	}
	return nil
}

func (r *UserVerificationRepository) Purge(ctx context.Context, email string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM otp_storage WHERE email = $1`, email); err != nil {
		return fmt.Errorf("otp purge: %w", err)
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM pending_users WHERE email = $1`, email); err != nil {
		return fmt.Errorf("pending user purge: %w", err)
	}
	return nil
}

// CleanupExpired удаляет истёкшие строки, до которых не дошло ленивое истечение.
func (r *UserVerificationRepository) CleanupExpired(ctx context.Context) (int64, error) {
	now := r.Now()
	var total int64
	for _, q := range []string{
		`DELETE FROM otp_storage WHERE expires_at <= $1`,
		`DELETE FROM pending_users WHERE expires_at <= $1`,
	} {
		res, err := r.DB.ExecContext(ctx, q, now)
		if err != nil {
			return total, fmt.Errorf("verification cleanup: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
