package model

import "time"

type TransactionID string

type TransactionKind string

const (
	KindBuySell  TransactionKind = "buy_sell"
	KindBoosting TransactionKind = "boosting"
)

type TransactionStatus string

const (
	StatusCreated    TransactionStatus = "created"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusCanceled   TransactionStatus = "canceled"
)

// Transaction is a single escrow trade between a seller and, once joined,
// a buyer. BuyerID and AccountDetails stay nil until set; nil and empty
// are distinct states.
type Transaction struct {
	ID             TransactionID     `db:"ID" json:"id"`
	CreatedAt      time.Time         `db:"CreatedAt" json:"createdAt"`
	Code           string            `db:"Code" json:"code"`
	Title          string            `db:"Title" json:"title"`
	Description    string            `db:"Description" json:"description"`
	Price          int64             `db:"Price" json:"price"`
	Kind           TransactionKind   `db:"Kind" json:"kind"`
	Status         TransactionStatus `db:"Status" json:"status"`
	SellerID       UserID            `db:"SellerID" json:"sellerId"`
	BuyerID        *UserID           `db:"BuyerID" json:"buyerId,omitempty"`
	ExpiresAt      time.Time         `db:"ExpiresAt" json:"expiresAt"`
	AccountDetails *string           `db:"AccountDetails" json:"accountDetails,omitempty"`
}

type CreateTransactionParams struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          int64           `json:"price"`
	Kind           TransactionKind `json:"kind"`
	ExpirationTime string          `json:"expirationTime"`
}

type StepTag string

const (
	StepCreated     StepTag = "created"
	StepPaymentSent StepTag = "payment_sent"
	StepAccountSent StepTag = "account_sent"
	StepConfirmed   StepTag = "confirmed"
	StepCompleted   StepTag = "completed"
)

// TransactionStep is one entry in the append-only lifecycle ledger. A tag
// being present means that phase happened; tags are read as a set, never
// as a counter.
type TransactionStep struct {
	ID            string        `db:"ID" json:"id"`
	TransactionID TransactionID `db:"TransactionID" json:"transactionId"`
	Step          StepTag       `db:"Step" json:"step"`
	CompletedAt   time.Time     `db:"CompletedAt" json:"completedAt"`
	CompletedBy   UserID        `db:"CompletedBy" json:"completedBy"`
}

// TransactionDetail projects a transaction plus its ledger for the
// participants' progress view.
type TransactionDetail struct {
	Transaction
	SellerName    string     `json:"sellerName"`
	BuyerName     *string    `json:"buyerName,omitempty"`
	Steps         []StepTag  `json:"steps"`
	PaymentSentAt *time.Time `json:"paymentSentAt,omitempty"`
	AccountSentAt *time.Time `json:"accountSentAt,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// TransactionSummary is the compact row used by the recent-activity list.
type TransactionSummary struct {
	ID          TransactionID     `db:"ID" json:"id"`
	Title       string            `db:"Title" json:"title"`
	Status      TransactionStatus `db:"Status" json:"status"`
	PartnerName string            `db:"PartnerName" json:"partnerName"`
	CreatedAt   time.Time         `db:"CreatedAt" json:"createdAt"`
}

// PublicListing is a buyer-less transaction shown on the discovery board.
type PublicListing struct {
	ID         TransactionID   `db:"ID" json:"id"`
	Code       string          `db:"Code" json:"code"`
	Title      string          `db:"Title" json:"title"`
	Price      int64           `db:"Price" json:"price"`
	Kind       TransactionKind `db:"Kind" json:"kind"`
	SellerName string          `db:"SellerName" json:"sellerName"`
}

// HistoryEntry is one row of the paginated transaction history.
type HistoryEntry struct {
	ID          TransactionID     `db:"ID" json:"id"`
	Code        string            `db:"Code" json:"code"`
	Title       string            `db:"Title" json:"title"`
	Kind        TransactionKind   `db:"Kind" json:"kind"`
	Status      TransactionStatus `db:"Status" json:"status"`
	Price       int64             `db:"Price" json:"price"`
	PartnerName string            `db:"PartnerName" json:"partnerName"`
	CreatedAt   time.Time         `db:"CreatedAt" json:"createdAt"`
}

type HistoryPage struct {
	Transactions []HistoryEntry `json:"transactions"`
	TotalCount   int            `json:"totalCount"`
	TotalPages   int            `json:"totalPages"`
}
