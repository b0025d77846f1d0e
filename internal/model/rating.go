package model

import "time"

type Rating struct {
	ID            string        `db:"ID" json:"id"`
	TransactionID TransactionID `db:"TransactionID" json:"transactionId"`
	RaterID       UserID        `db:"RaterID" json:"raterId"`
	TargetID      UserID        `db:"TargetID" json:"targetId"`
	Score         int           `db:"Score" json:"score"`
	Comment       *string       `db:"Comment" json:"comment,omitempty"`
	CreatedAt     time.Time     `db:"CreatedAt" json:"createdAt"`
}
