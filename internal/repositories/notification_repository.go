package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"bloghive/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Fanout(ctx context.Context, notificationID int, userIDs []int) (int64, error)
	ListForUser(ctx context.Context, userID int) ([]*models.UserNotification, error)
	MarkRead(ctx context.Context, userID, id int) (int64, error)
}

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	const q = `
		INSERT INTO notifications (title, description)
		VALUES ($1, $2)
		RETURNING id, sent_at
	`
	if err := r.DB.QueryRowContext(ctx, q, n.Title, n.Description).Scan(&n.ID, &n.SentAt); err != nil {
		return fmt.Errorf("notification create: %w", err)
	}
	return nil
}

// Fanout кладёт уведомление каждому получателю одним запросом.
func (r *notificationRepository) Fanout(ctx context.Context, notificationID int, userIDs []int) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	ids := make(pq.Int64Array, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, int64(id))
	}
	const q = `
		INSERT INTO user_notifications (user_id, notification_id)
		SELECT u.id, $1 FROM users u WHERE u.id = ANY($2)
	`
	res, err := r.DB.ExecContext(ctx, q, notificationID, ids)
	if err != nil {
		return 0, fmt.Errorf("notification fanout: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID int) ([]*models.UserNotification, error) {
	const q = `
		SELECT un.id, n.id, n.title, n.description, COALESCE(un.read, FALSE), un.created_at
		FROM user_notifications un
		JOIN notifications n ON n.id = un.notification_id
		WHERE un.user_id = $1
		ORDER BY un.created_at DESC, un.id DESC
	`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("notification list: %w", err)
	}
	defer rows.Close()

	out := []*models.UserNotification{}
	for rows.Next() {
		un := &models.UserNotification{}
		if err := rows.Scan(&un.ID, &un.NotificationID, &un.Title, &un.Description, &un.Read, &un.CreatedAt); err != nil {
			return nil, fmt.Errorf("notification scan: %w", err)
		}
		out = append(out, un)
	}
	return out, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id int) (int64, error) {
	const q = `UPDATE user_notifications SET read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, q, id, userID)
	if err != nil {
		return 0, fmt.Errorf("notification mark read: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
