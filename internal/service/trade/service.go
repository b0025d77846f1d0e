// Package trade implements the transaction lifecycle engine: creation,
// joining, account handoff, confirmation, cancellation and reporting,
// plus the read-side projections built from the step ledger.
//
// Lifecycle: created -> processing -> completed, with canceled reachable
// from created or processing. Completed and canceled are terminal. No
// funds move at join time; the price is credited to the seller on
// confirmation and refunded to the buyer when a processing transaction
// is canceled.
package trade

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pixeltrade/pixeltrade/internal/model"
	"github.com/pixeltrade/pixeltrade/pkg/lifespan"
	"github.com/pixeltrade/pixeltrade/pkg/tradecode"
)

const maxCodeAttempts = 5

type Store interface {
	CreateTransaction(trade *model.Transaction, created *model.TransactionStep) error
	GetTransaction(id model.TransactionID) (*model.Transaction, error)
	GetTransactionByCode(code string) (*model.Transaction, error)
	CodeExists(code string) (bool, error)
	ClaimTransaction(id model.TransactionID, buyerID model.UserID, payment *model.TransactionStep) error
	SetAccountDetails(id model.TransactionID, details string, sent *model.TransactionStep) error
	CompleteTransaction(id model.TransactionID, sellerID model.UserID, price int64, confirmed, completed *model.TransactionStep) error
	CancelTransaction(id model.TransactionID) (bool, error)
	CreateReport(report *model.Report) error
	ListSteps(transactionID model.TransactionID) ([]model.TransactionStep, error)
	GetUser(id model.UserID) (*model.User, error)
	RecentTransactions(userID model.UserID) ([]model.TransactionSummary, error)
	PublicTransactions() ([]model.PublicListing, error)
	TransactionHistory(userID model.UserID, kind string, sort string, page int) (*model.HistoryPage, error)
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

// Create validates the listing, assigns a unique join code and persists
// the transaction in created status with its initial ledger entry. No
// balance moves at creation.
func (s *service) Create(seller model.UserID, params *model.CreateTransactionParams) (*model.Transaction, error) {
	if err := validateCreateParams(params); err != nil {
		return nil, err
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}

	now := s.now()
	trade := &model.Transaction{
		ID:          model.TransactionID(model.CreateID()),
		CreatedAt:   now,
		Code:        code,
		Title:       params.Title,
		Description: params.Description,
		Price:       params.Price,
		Kind:        params.Kind,
		Status:      model.StatusCreated,
		SellerID:    seller,
		ExpiresAt:   lifespan.ExpiresAt(params.ExpirationTime, now),
	}

	if err := s.store.CreateTransaction(trade, s.newStep(trade.ID, model.StepCreated, seller)); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return trade, nil
}

// Join binds the caller as buyer of the transaction behind code and moves
// it to processing, recording the payment step. Joining again as the same
// buyer is idempotent.
func (s *service) Join(buyer model.UserID, code string) (*model.Transaction, error) {
	if code == "" {
		return nil, model.Invalid("code", "code is required")
	}

	trade, err := s.store.GetTransactionByCode(code)
	if err != nil {
		return nil, err
	}

	if !s.now().Before(trade.ExpiresAt) {
		return nil, model.ErrorExpired
	}
	if trade.BuyerID != nil {
		if *trade.BuyerID == buyer {
			return trade, nil
		}
		return nil, model.ErrorAlreadyClaimed
	}
	if trade.SellerID == buyer {
		return nil, model.ErrorSelfJoin
	}

	err = s.store.ClaimTransaction(trade.ID, buyer, s.newStep(trade.ID, model.StepPaymentSent, buyer))
	if errors.Is(err, model.ErrorConflict) {
		return nil, s.classifyJoinRace(trade.ID, buyer)
	}
	if err != nil {
		return nil, fmt.Errorf("joining transaction: %w", err)
	}

	return s.store.GetTransaction(trade.ID)
}

// SendAccountDetails stores the seller's handoff payload. Calling it again
// overwrites the earlier payload; only the first call appends a ledger
// entry per processing phase in practice, but the ledger itself does not
// deduplicate.
func (s *service) SendAccountDetails(caller model.UserID, id model.TransactionID, payload string) error {
	if strings.TrimSpace(payload) == "" {
		return model.Invalid("details", "account details are required")
	}

	trade, err := s.store.GetTransaction(id)
	if err != nil {
		return err
	}
	if trade.SellerID != caller {
		return model.ErrorForbidden
	}
	if trade.Status != model.StatusProcessing {
		return model.ErrorInvalidState
	}

	err = s.store.SetAccountDetails(id, payload, s.newStep(id, model.StepAccountSent, caller))
	if errors.Is(err, model.ErrorConflict) {
		return s.classifyStateRace(id)
	}
	return err
}

// ConfirmReceipt is the buyer's acknowledgement that the handoff arrived.
// It closes the transaction and credits the price to the seller; this is
// the only path by which trade funds reach a seller's balance.
func (s *service) ConfirmReceipt(caller model.UserID, id model.TransactionID) error {
	trade, err := s.store.GetTransaction(id)
	if err != nil {
		return err
	}
	if trade.BuyerID == nil || *trade.BuyerID != caller {
		return model.ErrorForbidden
	}
	if trade.Status != model.StatusProcessing {
		return model.ErrorInvalidState
	}
	if trade.AccountDetails == nil || *trade.AccountDetails == "" {
		return model.ErrorInvalidState
	}

	err = s.store.CompleteTransaction(id, trade.SellerID, trade.Price,
		s.newStep(id, model.StepConfirmed, caller),
		s.newStep(id, model.StepCompleted, caller))
	if errors.Is(err, model.ErrorConflict) {
		return s.classifyStateRace(id)
	}
	return err
}

// Cancel moves a live transaction to canceled. The store refunds the
// buyer when payment had been sent (status was processing).
func (s *service) Cancel(caller model.UserID, id model.TransactionID) error {
	trade, err := s.store.GetTransaction(id)
	if err != nil {
		return err
	}
	if !isParticipant(trade, caller) {
		return model.ErrorForbidden
	}
	if trade.Status == model.StatusCompleted || trade.Status == model.StatusCanceled {
		return model.ErrorInvalidState
	}

	_, err = s.store.CancelTransaction(id)
	if errors.Is(err, model.ErrorConflict) {
		return s.classifyStateRace(id)
	}
	return err
}

// Report files a complaint against the transaction. No state changes.
func (s *service) Report(caller model.UserID, id model.TransactionID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return model.Invalid("reason", "report reason is required")
	}

	trade, err := s.store.GetTransaction(id)
	if err != nil {
		return err
	}
	if !isParticipant(trade, caller) {
		return model.ErrorForbidden
	}

	report := &model.Report{
		ID:            model.CreateID(),
		TransactionID: id,
		UserID:        caller,
		Reason:        reason,
		CreatedAt:     s.now(),
	}
	return s.store.CreateReport(report)
}

func (s *service) uniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := tradecode.Generate()
		if err != nil {
			return "", fmt.Errorf("generating code: %w", err)
		}
		exists, err := s.store.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique code after %d attempts", maxCodeAttempts)
}

func (s *service) newStep(id model.TransactionID, tag model.StepTag, actor model.UserID) *model.TransactionStep {
	return &model.TransactionStep{
		ID:            model.CreateID(),
		TransactionID: id,
		Step:          tag,
		CompletedAt:   s.now(),
		CompletedBy:   actor,
	}
}

// classifyJoinRace re-reads after a lost claim race and reports the
// precise join failure the winner's commit produced.
func (s *service) classifyJoinRace(id model.TransactionID, buyer model.UserID) error {
	trade, err := s.store.GetTransaction(id)
	if err != nil {
		return err
	}
	if trade.BuyerID != nil && *trade.BuyerID != buyer {
		return model.ErrorAlreadyClaimed
	}
	if trade.Status != model.StatusCreated {
		return model.ErrorInvalidState
	}
	return model.ErrorConflict
}

// classifyStateRace re-reads after a lost transition race; the usual
// outcome is that the other caller already moved the status.
func (s *service) classifyStateRace(id model.TransactionID) error {
	trade, err := s.store.GetTransaction(id)
	if err != nil {
		return err
	}
	if trade.Status != model.StatusProcessing {
		return model.ErrorInvalidState
	}
	return model.ErrorConflict
}

func isParticipant(trade *model.Transaction, userID model.UserID) bool {
	if trade.SellerID == userID {
		return true
	}
	return trade.BuyerID != nil && *trade.BuyerID == userID
}

func validateCreateParams(params *model.CreateTransactionParams) error {
	if len(params.Title) < 5 {
		return model.Invalid("title", "title must be at least 5 characters")
	}
	if len(params.Description) < 10 {
		return model.Invalid("description", "description must be at least 10 characters")
	}
	if params.Price < 100 {
		return model.Invalid("price", "price must be at least 100")
	}
	if params.Kind != model.KindBuySell && params.Kind != model.KindBoosting {
		return model.Invalid("kind", "kind must be buy_sell or boosting")
	}
	if !lifespan.Valid(params.ExpirationTime) {
		return model.Invalid("expirationTime", "expiration time must be one of 24h, 48h, 72h, 1week")
	}
	return nil
}
