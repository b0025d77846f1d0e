package tradestore

import (
	"fmt"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

// AppendStep records a lifecycle event outside of a state transition.
// Transition methods append their own steps atomically; this exists for
// the ledger's own write path.
func (s *Store) AppendStep(step *model.TransactionStep) error {
	_, err := s.db.NamedExec(`insert into transaction_steps
		(ID, TransactionID, Step, CompletedAt, CompletedBy)
		values (:ID, :TransactionID, :Step, :CompletedAt, :CompletedBy)`, step)
	if err != nil {
		return fmt.Errorf("inserting step: %w", err)
	}
	return nil
}

func (s *Store) ListSteps(transactionID model.TransactionID) ([]model.TransactionStep, error) {
	steps := []model.TransactionStep{}
	err := s.db.Select(&steps, `select * from transaction_steps
		where TransactionID = ?
		order by CompletedAt asc, rowid asc`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing steps: %w", err)
	}
	return steps, nil
}
