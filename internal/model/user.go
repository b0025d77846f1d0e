package model

import "time"

type UserID string

type User struct {
	ID        UserID    `db:"ID" json:"id"`
	CreatedAt time.Time `db:"CreatedAt" json:"createdAt"`
	Username  string    `db:"Username" json:"username"`
	Name      string    `db:"Name" json:"name"`
	Email     string    `db:"Email" json:"email"`
	Age       int       `db:"Age" json:"age"`
	Password  string    `db:"Password" json:"-"`
	Balance   int64     `db:"Balance" json:"balance"`
}

type CreateUserParams struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Password string `json:"password"`
}

type UpdateUserParams struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserStats is the aggregate view rendered on a user's dashboard.
type UserStats struct {
	CompletedTransactions int     `json:"completedTransactions"`
	PendingTransactions   int     `json:"pendingTransactions"`
	TotalTransactions     int     `json:"totalTransactions"`
	RatingAverage         float64 `json:"ratingAverage"`
	RatingCount           int     `json:"ratingCount"`
	BuySellPercent        int     `json:"buySellPercent"`
	BoostingPercent       int     `json:"boostingPercent"`
}
