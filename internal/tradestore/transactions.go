package tradestore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

func (s *Store) CreateTransaction(trade *model.Transaction, created *model.TransactionStep) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`insert into transactions
		(ID, CreatedAt, Code, Title, Description, Price, Kind, Status, SellerID, BuyerID, ExpiresAt, AccountDetails)
		values (:ID, :CreatedAt, :Code, :Title, :Description, :Price, :Kind, :Status, :SellerID, :BuyerID, :ExpiresAt, :AccountDetails)`, trade)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	if err := insertStep(tx, created); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(id model.TransactionID) (*model.Transaction, error) {
	trade := &model.Transaction{}
	err := s.db.Get(trade, `select * from transactions where ID = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorNotFound
		}
		return nil, fmt.Errorf("fetching transaction: %w", err)
	}
	return trade, nil
}

func (s *Store) GetTransactionByCode(code string) (*model.Transaction, error) {
	trade := &model.Transaction{}
	err := s.db.Get(trade, `select * from transactions where Code = ?`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorNotFound
		}
		return nil, fmt.Errorf("fetching transaction by code: %w", err)
	}
	return trade, nil
}

func (s *Store) CodeExists(code string) (bool, error) {
	var count int
	if err := s.db.Get(&count, `select count(*) from transactions where Code = ?`, code); err != nil {
		return false, fmt.Errorf("checking code: %w", err)
	}
	return count > 0, nil
}

// ClaimTransaction binds buyerID to a still-unclaimed transaction and
// moves it to processing. A concurrent claim loses with
// model.ErrorConflict; the caller re-reads to classify the failure.
func (s *Store) ClaimTransaction(id model.TransactionID, buyerID model.UserID, payment *model.TransactionStep) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`update transactions
		set BuyerID = ?, Status = ?
		where ID = ? and BuyerID is null and Status = ?`,
		buyerID, model.StatusProcessing, id, model.StatusCreated)
	if err != nil {
		return fmt.Errorf("claiming transaction: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorConflict
	}

	if err := insertStep(tx, payment); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing claim: %w", err)
	}
	return nil
}

// SetAccountDetails stores the handoff payload while the transaction is
// still processing. Overwrites any earlier payload.
func (s *Store) SetAccountDetails(id model.TransactionID, details string, sent *model.TransactionStep) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`update transactions
		set AccountDetails = ?
		where ID = ? and Status = ?`,
		details, id, model.StatusProcessing)
	if err != nil {
		return fmt.Errorf("setting account details: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorConflict
	}

	if err := insertStep(tx, sent); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing account details: %w", err)
	}
	return nil
}

// CompleteTransaction flips processing to completed, appends the closing
// steps and credits the seller, all in one committed unit.
func (s *Store) CompleteTransaction(id model.TransactionID, sellerID model.UserID, price int64, confirmed, completed *model.TransactionStep) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`update transactions
		set Status = ?
		where ID = ? and Status = ?`,
		model.StatusCompleted, id, model.StatusProcessing)
	if err != nil {
		return fmt.Errorf("completing transaction: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorConflict
	}

	if err := insertStep(tx, confirmed); err != nil {
		return err
	}
	if err := insertStep(tx, completed); err != nil {
		return err
	}

	if _, err := tx.Exec(`update users set Balance = Balance + ? where ID = ?`, price, sellerID); err != nil {
		return fmt.Errorf("crediting seller: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing completion: %w", err)
	}
	return nil
}

// CancelTransaction moves a live transaction to canceled. When a buyer had
// already joined (status was processing) the price is refunded to them in
// the same committed unit. Returns whether a refund was applied.
func (s *Store) CancelTransaction(id model.TransactionID) (bool, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	trade := &model.Transaction{}
	if err := tx.Get(trade, `select * from transactions where ID = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, model.ErrorNotFound
		}
		return false, fmt.Errorf("fetching transaction: %w", err)
	}

	if trade.Status == model.StatusCompleted || trade.Status == model.StatusCanceled {
		return false, model.ErrorInvalidState
	}

	res, err := tx.Exec(`update transactions
		set Status = ?
		where ID = ? and Status = ?`,
		model.StatusCanceled, id, trade.Status)
	if err != nil {
		return false, fmt.Errorf("canceling transaction: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return false, model.ErrorConflict
	}

	refunded := false
	if trade.BuyerID != nil && trade.Status == model.StatusProcessing {
		if _, err := tx.Exec(`update users set Balance = Balance + ? where ID = ?`, trade.Price, *trade.BuyerID); err != nil {
			return false, fmt.Errorf("refunding buyer: %w", err)
		}
		refunded = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing cancellation: %w", err)
	}
	return refunded, nil
}

func (s *Store) ListTransactionsByUser(userID model.UserID) ([]model.Transaction, error) {
	trades := []model.Transaction{}
	err := s.db.Select(&trades, `select * from transactions
		where SellerID = ? or BuyerID = ?
		order by CreatedAt desc`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user transactions: %w", err)
	}
	return trades, nil
}

func insertStep(tx *sqlx.Tx, step *model.TransactionStep) error {
	_, err := tx.NamedExec(`insert into transaction_steps
		(ID, TransactionID, Step, CompletedAt, CompletedBy)
		values (:ID, :TransactionID, :Step, :CompletedAt, :CompletedBy)`, step)
	if err != nil {
		return fmt.Errorf("inserting step: %w", err)
	}
	return nil
}
