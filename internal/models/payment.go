package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the caller-supplied disbursement request.
// Amount accepts both JSON numbers and strings.
type PaymentRequest struct {
	Email  string          `json:"email"`
	Amount decimal.Decimal `json:"amount"`
}

// PayoutInstruction is the instruction submitted to the payout gateway.
type PayoutInstruction struct {
	BatchID  string          `json:"batch_id"`
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NotificationRecord is persisted after a payout has been accepted.
// FarmerID is the resolved directory id, not the raw email.
type NotificationRecord struct {
	FarmerID  string    `json:"farmer_id" db:"farmer_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	IsRead    bool      `json:"is_read" db:"is_read"`
}

// Farmer is a row of the farmers directory table.
type Farmer struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
