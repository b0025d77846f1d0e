package tradestore

import (
	"fmt"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

func (s *Store) CreateMessage(message *model.Message) error {
	_, err := s.db.NamedExec(`insert into messages
		(ID, TransactionID, SenderID, Content, CreatedAt)
		values (:ID, :TransactionID, :SenderID, :Content, :CreatedAt)`, message)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// ListMessages returns the transaction's messages oldest first, each with
// the sender's display name joined in at read time.
func (s *Store) ListMessages(transactionID model.TransactionID) ([]model.MessageWithSender, error) {
	messages := []model.MessageWithSender{}
	err := s.db.Select(&messages, `select m.*, coalesce(u.Name, 'Unknown User') as SenderName
		from messages m
		left join users u on u.ID = m.SenderID
		where m.TransactionID = ?
		order by m.CreatedAt asc, m.rowid asc`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}
