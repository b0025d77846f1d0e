package model

import "time"

type Report struct {
	ID            string        `db:"ID" json:"id"`
	TransactionID TransactionID `db:"TransactionID" json:"transactionId"`
	UserID        UserID        `db:"UserID" json:"userId"`
	Reason        string        `db:"Reason" json:"reason"`
	CreatedAt     time.Time     `db:"CreatedAt" json:"createdAt"`
}
