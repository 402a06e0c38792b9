package database

import (
	"context"
	"fmt"

	"github.com/sajitha00/farm-to-keells-api/internal/models"
)

// NotificationRepository persists disbursement notifications.
type NotificationRepository struct {
	pool DatabasePool
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(pool DatabasePool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Insert persists a notification record.
func (r *NotificationRepository) Insert(ctx context.Context, record models.NotificationRecord) error {
	query := `
		INSERT INTO notifications (farmer_id, message, created_at, is_read)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		record.FarmerID, record.Message, record.CreatedAt, record.IsRead)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// ListByFarmer returns notifications for a farmer, newest first.
func (r *NotificationRepository) ListByFarmer(ctx context.Context, farmerID string) ([]models.NotificationRecord, error) {
	query := `
		SELECT farmer_id, message, created_at, is_read
		FROM notifications
		WHERE farmer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var records []models.NotificationRecord
	for rows.Next() {
		var rec models.NotificationRecord
		if err := rows.Scan(&rec.FarmerID, &rec.Message, &rec.CreatedAt, &rec.IsRead); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return records, nil
}
