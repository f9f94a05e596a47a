package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/models"
	"github.com/vkarpenko/shareplate-api/internal/websocket"
)

// Sink сохраняет уведомления в базу и пушит их онлайн-пользователям
type Sink struct {
	wsManager *websocket.Manager
}

// NewSink создает новый экземпляр Sink
func NewSink(wsManager *websocket.Manager) *Sink {
	return &Sink{wsManager: wsManager}
}

// Notify сохраняет уведомление и отправляет его по WebSocket.
// Ошибка пуша не считается ошибкой доставки: уведомление уже в базе
// и пользователь увидит его при следующем запросе.
func (s *Sink) Notify(ctx context.Context, n *models.Notification) error {
	if err := db.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("ошибка сохранения уведомления: %w", err)
	}

	if s.wsManager == nil {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("Ошибка сериализации уведомления: %v", err)
		return nil
	}

	s.wsManager.SendToUser(n.UserID.String(), websocket.Event{
		Type:      websocket.EventNewNotification,
		UserID:    n.UserID.String(),
		Timestamp: time.Now(),
		Payload:   payload,
	})

	return nil
}
