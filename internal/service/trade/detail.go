package trade

import (
	"time"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

// Detail projects a transaction and its step ledger into the progress
// view shown to the two participants. Step tags are treated as set
// membership: a tag being present means that phase happened.
func (s *service) Detail(caller model.UserID, id model.TransactionID) (*model.TransactionDetail, error) {
	trade, err := s.store.GetTransaction(id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(trade, caller) {
		return nil, model.ErrorForbidden
	}

	steps, err := s.store.ListSteps(id)
	if err != nil {
		return nil, err
	}

	detail := &model.TransactionDetail{
		Transaction: *trade,
		SellerName:  "Unknown Seller",
		Steps:       make([]model.StepTag, 0, len(steps)),
	}

	if seller, err := s.store.GetUser(trade.SellerID); err == nil {
		detail.SellerName = seller.Name
	}
	if trade.BuyerID != nil {
		if buyer, err := s.store.GetUser(*trade.BuyerID); err == nil {
			detail.BuyerName = &buyer.Name
		}
	}

	for _, step := range steps {
		detail.Steps = append(detail.Steps, step.Step)
		at := step.CompletedAt
		switch step.Step {
		case model.StepPaymentSent:
			detail.PaymentSentAt = firstTime(detail.PaymentSentAt, at)
		case model.StepAccountSent:
			detail.AccountSentAt = firstTime(detail.AccountSentAt, at)
		case model.StepConfirmed:
			detail.ConfirmedAt = firstTime(detail.ConfirmedAt, at)
		case model.StepCompleted:
			detail.CompletedAt = firstTime(detail.CompletedAt, at)
		}
	}

	return detail, nil
}

func (s *service) Recent(caller model.UserID) ([]model.TransactionSummary, error) {
	return s.store.RecentTransactions(caller)
}

func (s *service) Public() ([]model.PublicListing, error) {
	return s.store.PublicTransactions()
}

func (s *service) History(caller model.UserID, kind string, sort string, page int) (*model.HistoryPage, error) {
	return s.store.TransactionHistory(caller, kind, sort, page)
}

func firstTime(existing *time.Time, at time.Time) *time.Time {
	if existing != nil {
		return existing
	}
	return &at
}
