// Package chat is the per-transaction message list. Access is gated on
// the engine's participant rule; the messages themselves are plain
// append-only rows polled by the clients.
package chat

import (
	"strings"
	"time"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

type Store interface {
	GetTransaction(id model.TransactionID) (*model.Transaction, error)
	CreateMessage(message *model.Message) error
	ListMessages(transactionID model.TransactionID) ([]model.MessageWithSender, error)
	GetUser(id model.UserID) (*model.User, error)
}

type service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *service {
	return &service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Post(caller model.UserID, transactionID model.TransactionID, content string) (*model.MessageWithSender, error) {
	if strings.TrimSpace(content) == "" {
		return nil, model.Invalid("content", "message content is required")
	}

	trade, err := s.store.GetTransaction(transactionID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(trade, caller) {
		return nil, model.ErrorForbidden
	}

	message := &model.Message{
		ID:            model.CreateID(),
		TransactionID: transactionID,
		SenderID:      caller,
		Content:       content,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateMessage(message); err != nil {
		return nil, err
	}

	sender, err := s.store.GetUser(caller)
	if err != nil {
		return nil, err
	}

	return &model.MessageWithSender{Message: *message, SenderName: sender.Name}, nil
}

func (s *service) List(caller model.UserID, transactionID model.TransactionID) ([]model.MessageWithSender, error) {
	trade, err := s.store.GetTransaction(transactionID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(trade, caller) {
		return nil, model.ErrorForbidden
	}
	return s.store.ListMessages(transactionID)
}

func isParticipant(trade *model.Transaction, userID model.UserID) bool {
	if trade.SellerID == userID {
		return true
	}
	return trade.BuyerID != nil && *trade.BuyerID == userID
}
