package model

import "time"

type Message struct {
	ID            string        `db:"ID" json:"id"`
	TransactionID TransactionID `db:"TransactionID" json:"transactionId"`
	SenderID      UserID        `db:"SenderID" json:"senderId"`
	Content       string        `db:"Content" json:"content"`
	CreatedAt     time.Time     `db:"CreatedAt" json:"createdAt"`
}

// MessageWithSender carries the sender's display name, joined in at read
// time rather than stored with the message.
type MessageWithSender struct {
	Message
	SenderName string `db:"SenderName" json:"senderName"`
}
