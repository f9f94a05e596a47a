package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vkarpenko/shareplate-api/internal/models"
)

// CreateNotification сохраняет уведомление пользователя
func CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	_, err := Pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, message, link)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.UserID, n.Type, n.Message, n.Link)

	if err != nil {
		return fmt.Errorf("ошибка при создании уведомления: %w", err)
	}

	return nil
}

// ListNotifications возвращает последние уведомления пользователя
func ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	rows, err := Pool.Query(ctx, `
		SELECT id, user_id, type, message, link, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)

	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе уведомлений: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var link pgtype.Text

		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &link, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании уведомления: %w", err)
		}

		if link.Valid {
			n.Link = link.String
		}

		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead помечает уведомление прочитанным.
// Чужие уведомления игнорируются условием по user_id.
func MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	tag, err := Pool.Exec(ctx, `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)

	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении уведомления: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// CountUnreadNotifications возвращает количество непрочитанных уведомлений
func CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false
	`, userID).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчете уведомлений: %w", err)
	}

	return count, nil
}
