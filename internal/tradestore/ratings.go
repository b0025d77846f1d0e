package tradestore

import (
	"fmt"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

func (s *Store) CreateRating(rating *model.Rating) error {
	_, err := s.db.NamedExec(`insert into ratings
		(ID, TransactionID, RaterID, TargetID, Score, Comment, CreatedAt)
		values (:ID, :TransactionID, :RaterID, :TargetID, :Score, :Comment, :CreatedAt)`, rating)
	if err != nil {
		return fmt.Errorf("inserting rating: %w", err)
	}
	return nil
}

func (s *Store) ListRatingsByTarget(targetID model.UserID) ([]model.Rating, error) {
	ratings := []model.Rating{}
	err := s.db.Select(&ratings, `select * from ratings
		where TargetID = ?
		order by CreatedAt desc`, targetID)
	if err != nil {
		return nil, fmt.Errorf("listing ratings: %w", err)
	}
	return ratings, nil
}
