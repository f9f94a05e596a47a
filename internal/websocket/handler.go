package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vkarpenko/shareplate-api/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler выполняет апгрейд HTTP-соединения до WebSocket.
// Апгрейд живет на отдельном net/http сервере, потому что Fiber
// работает поверх fasthttp и не поддерживает hijack соединения.
func Handler(manager *Manager, jwtService *utils.JWTService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Токен передается в query-параметре, браузерный WebSocket API
		// не позволяет выставить заголовок Authorization
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "токен не указан", http.StatusUnauthorized)
			return
		}

		userID, err := jwtService.ExtractUserID(token)
		if err != nil {
			http.Error(w, "недействительный токен", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Ошибка апгрейда WebSocket: %v", err)
			return
		}

		client := NewClient(userID, conn, manager)
		client.Start()

		// Подтверждаем подключение
		payload, _ := json.Marshal(map[string]string{"client_id": client.ID.String()})
		manager.SendToUser(userID, Event{
			Type:      EventConnected,
			UserID:    userID,
			Timestamp: time.Now(),
			Payload:   payload,
		})
	}
}
