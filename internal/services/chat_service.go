package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"

	"github.com/google/uuid"
)

// --- Data Transfer Objects (DTOs) ---

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

// --- ChatService Interface ---

// ChatService exposes the order-scoped chat thread between a customer and
// their assigned rider. There is no thread before assignment and the thread
// closes with the order.
type ChatService interface {
	SendMessage(actor Actor, orderID int64, req SendMessageRequest) (*models.ChatMessage, error)
	GetMessages(actor Actor, orderID int64) ([]models.ChatMessage, error)
}

// --- chatService Implementation ---

type chatService struct {
	chatRepo  repositories.ChatRepository
	orderRepo repositories.OrderRepository
	notifier  Notifier
}

// NewChatService creates a new instance of ChatService.
func NewChatService(
	chatRepo repositories.ChatRepository,
	orderRepo repositories.OrderRepository,
	notifier Notifier,
) ChatService {
	return &chatService{chatRepo: chatRepo, orderRepo: orderRepo, notifier: notifier}
}

func (s *chatService) SendMessage(actor Actor, orderID int64, req SendMessageRequest) (*models.ChatMessage, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", ErrValidation)
	}

	order, err := s.authorizedOrder(actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.RiderID == nil {
		return nil, fmt.Errorf("%w: no rider is assigned yet", ErrChatNotAvailable)
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrChatNotAvailable, order.Status)
	}

	message := &models.ChatMessage{
		MessageUID: uuid.NewString(),
		OrderID:    orderID,
		SenderID:   actor.UserID,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if _, err := s.chatRepo.CreateMessage(message); err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}

	// Notify the counterparty, not the sender.
	recipient := order.CustomerID
	if actor.UserID == order.CustomerID {
		recipient = *order.RiderID
	}
	notify(s.notifier, recipient, NotifyChatMessage,
		"New message", fmt.Sprintf("New message on order #%d", orderID))
	return message, nil
}

func (s *chatService) GetMessages(actor Actor, orderID int64) ([]models.ChatMessage, error) {
	if _, err := s.authorizedOrder(actor, orderID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessagesByOrderID(orderID)
}

func (s *chatService) authorizedOrder(actor Actor, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	if err := authorizeOrderParty(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}
