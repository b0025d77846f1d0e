package tradestore

import (
	"fmt"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

const historyPageSize = 10

// RecentTransactions returns the user's five newest trades with the
// counterparty's display name.
func (s *Store) RecentTransactions(userID model.UserID) ([]model.TransactionSummary, error) {
	summaries := []model.TransactionSummary{}
	err := s.db.Select(&summaries, `select
			t.ID, t.Title, t.Status, t.CreatedAt,
			coalesce(u.Name, 'Unknown User') as PartnerName
		from transactions t
		left join users u on u.ID = case when t.SellerID = ? then t.BuyerID else t.SellerID end
		where t.SellerID = ? or t.BuyerID = ?
		order by t.CreatedAt desc
		limit 5`, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing recent transactions: %w", err)
	}
	return summaries, nil
}

// PublicTransactions returns the five newest buyer-less listings for the
// discovery board.
func (s *Store) PublicTransactions() ([]model.PublicListing, error) {
	listings := []model.PublicListing{}
	err := s.db.Select(&listings, `select
			t.ID, t.Code, t.Title, t.Price, t.Kind,
			coalesce(u.Name, 'Unknown Seller') as SellerName
		from transactions t
		left join users u on u.ID = t.SellerID
		where t.Status = ? and t.BuyerID is null
		order by t.CreatedAt desc
		limit 5`, model.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("listing public transactions: %w", err)
	}
	return listings, nil
}

var historySorts = map[string]string{
	"newest":        "t.CreatedAt desc",
	"oldest":        "t.CreatedAt asc",
	"highest_price": "t.Price desc",
	"lowest_price":  "t.Price asc",
}

// TransactionHistory returns one page of the user's trades, optionally
// filtered by kind. Unknown sort keys fall back to newest-first.
func (s *Store) TransactionHistory(userID model.UserID, kind string, sort string, page int) (*model.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	orderBy, ok := historySorts[sort]
	if !ok {
		orderBy = historySorts["newest"]
	}

	where := `(t.SellerID = ? or t.BuyerID = ?)`
	args := []interface{}{userID, userID}
	if kind != "" && kind != "all" {
		where += ` and t.Kind = ?`
		args = append(args, kind)
	}

	var totalCount int
	if err := s.db.Get(&totalCount, `select count(*) from transactions t where `+where, args...); err != nil {
		return nil, fmt.Errorf("counting history: %w", err)
	}

	entries := []model.HistoryEntry{}
	query := `select
			t.ID, t.Code, t.Title, t.Kind, t.Status, t.Price, t.CreatedAt,
			coalesce(u.Name, 'Unknown User') as PartnerName
		from transactions t
		left join users u on u.ID = case when t.SellerID = ? then t.BuyerID else t.SellerID end
		where ` + where + `
		order by ` + orderBy + `
		limit ? offset ?`
	queryArgs := append([]interface{}{userID}, args...)
	queryArgs = append(queryArgs, historyPageSize, (page-1)*historyPageSize)
	if err := s.db.Select(&entries, query, queryArgs...); err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	totalPages := (totalCount + historyPageSize - 1) / historyPageSize
	return &model.HistoryPage{
		Transactions: entries,
		TotalCount:   totalCount,
		TotalPages:   totalPages,
	}, nil
}
