package domain

import "time"

// QuoteRequest asks what a prospective transfer would cost.
type QuoteRequest struct {
	TransactionCode string
	QuoteCode       string
	Party           Party
	Amount          Money
	Role            TransactionRole
	Expiration      *time.Time
}

type QuoteResult struct {
	TransactionCode string
	QuoteCode       string
	AccountID       string
	State           ActionState
	Fee             Money
	Expiration      *time.Time
	CompletedAt     time.Time
}

// TransactionRequest is a payee-initiated request for the payer to pay.
// Requests are validated but never stored.
type TransactionRequest struct {
	TransactionCode string
	RequestCode     string
	Party           Party
	Amount          Money
	Role            TransactionRole
	Expiration      *time.Time
}

type TransactionRequestResult struct {
	TransactionCode string
	RequestCode     string
	AccountID       string
	State           ActionState
	Expiration      *time.Time
	CompletedAt     time.Time
}
