package repositories

import (
	"database/sql"
	"fmt"

	"ninthwaka_backend/internal/models"
)

// ChatRepository defines the interface for order-scoped chat message persistence.
type ChatRepository interface {
	CreateMessage(message *models.ChatMessage) (int64, error)
	GetMessagesByOrderID(orderID int64) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new instance of ChatRepository.
func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(message *models.ChatMessage) (int64, error) {
	query := `INSERT INTO chat_messages (message_uid, order_id, sender_id, body, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	err := r.db.QueryRow(query,
		message.MessageUID, message.OrderID, message.SenderID, message.Body, message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating chat message for order %d: %v", ErrDatabaseError, message.OrderID, err)
	}
	return message.ID, nil
}

func (r *chatRepository) GetMessagesByOrderID(orderID int64) ([]models.ChatMessage, error) {
	rows, err := r.db.Query(
		`SELECT id, message_uid, order_id, sender_id, body, created_at
		 FROM chat_messages WHERE order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chat messages for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.MessageUID, &m.OrderID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning chat message: %v", ErrDatabaseError, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chat message rows: %v", ErrDatabaseError, err)
	}
	return messages, nil
}
