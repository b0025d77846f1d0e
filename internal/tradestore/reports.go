package tradestore

import (
	"fmt"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

func (s *Store) CreateReport(report *model.Report) error {
	_, err := s.db.NamedExec(`insert into reports
		(ID, TransactionID, UserID, Reason, CreatedAt)
		values (:ID, :TransactionID, :UserID, :Reason, :CreatedAt)`, report)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}
