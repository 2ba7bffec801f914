package repositories

import (
	"context"
	"time"

	"conexx/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	ExistsWithTitleSince(ctx context.Context, userID uuid.UUID, title string, since time.Time) (bool, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, action_link, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
	`
	_, err := r.db.Exec(ctx, query, notification.ID, notification.UserID, notification.Type,
		notification.Title, notification.Message, notification.ActionLink)
	return err
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, action_link, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.ActionLink,
			&n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`
	var count int
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, userID, id)
	return err
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// ExistsWithTitleSince backs the renewal-warning dedup: one identical-titled
// notification per user per day.
func (r *notificationRepo) ExistsWithTitleSince(ctx context.Context, userID uuid.UUID, title string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND title = $2 AND created_at >= $3
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, title, since).Scan(&exists)
	return exists, err
}
