package dto

import "github.com/shopspring/decimal"

// CreateWalletRequest is the request body for wallet provisioning.
type CreateWalletRequest struct {
	PlayerID string `json:"player_id" binding:"required,uuid"`
}

// MutationRequest is the request body for credit and debit operations.
// Amount accepts a JSON number or numeric string.
type MutationRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	IdempotencyKey string          `json:"idempotency_key" binding:"required,max=100,safe_id"`
}

// WalletResponse is the response body for wallet provisioning and lookup.
type WalletResponse struct {
	WalletID  int64  `json:"wallet_id"`
	PlayerID  string `json:"player_id"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// BalanceResponse is the response for balance queries.
type BalanceResponse struct {
	PlayerID string `json:"player_id"`
	Balance  string `json:"balance"`
}

// TransactionResponse is the response body for an applied mutation or a
// ledger entry. Amount is the absolute value; Direction carries the sign.
type TransactionResponse struct {
	TransactionID  int64  `json:"transaction_id"`
	PlayerID       string `json:"player_id"`
	Amount         string `json:"amount"`
	Direction      string `json:"direction"`
	IdempotencyKey string `json:"idempotency_key"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// TransactionListResponse wraps a wallet's ledger.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Total int                   `json:"total"`
}
