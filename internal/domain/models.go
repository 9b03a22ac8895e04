/**
 * @description
 * This file defines the core domain models for the wallet-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Balances and amounts are stored as `Kobo` (int64 minor currency units) to
 *   avoid floating-point inaccuracies with financial data. The HTTP surface
 *   speaks exact two-digit decimals; see money.go for the conversion rules.
 * - Using distinct types for API requests and database models keeps the
 *   request-parsing layer from leaking into the ledger logic.
 */

package domain

import (
	"encoding/json"
	"time"
)

// TransactionType enumerates the four kinds of ledger mutations.
type TransactionType string

const (
	TransactionFund        TransactionType = "fund"
	TransactionWithdraw    TransactionType = "withdraw"
	TransactionTransferIn  TransactionType = "transferIn"
	TransactionTransferOut TransactionType = "transferOut"
)

// User maps to the `users` table. The password hash never leaves the service.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	LgaID        int64     `json:"lga_id"`
	City         string    `json:"city"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Account maps to the `accounts` table. Exactly one account exists per user,
// created in the same database transaction as the user row.
type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Balance   Kobo      `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is one append-only audit row in the `transactions` table.
// Rows are never mutated or deleted except by cascade with their owner.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Type      TransactionType `json:"transaction_type"`
	Amount    Kobo            `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OwnerProfile is the subset of user fields returned alongside an account.
type OwnerProfile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Email       string    `json:"email"`
	LgaID       int64     `json:"lga_id"`
}

// AccountWithOwner is the joined projection used by the account read endpoint.
type AccountWithOwner struct {
	Account Account
	Owner   OwnerProfile
}

// AuditEntry is one pending transaction-log append, queued by the ledger
// engine and drained asynchronously by the audit recorder.
type AuditEntry struct {
	UserID    int64           `json:"user_id"`
	Type      TransactionType `json:"transaction_type"`
	Amount    Kobo            `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
}

// RegisterRequest is the DTO for POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	LgaID       int64  `json:"lga_id"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Password    string `json:"password"`
}

// LoginRequest is the DTO for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AmountRequest is the DTO for fund and withdraw requests. The amount is kept
// as json.Number so that both `100.5` and `"100.50"` parse exactly.
type AmountRequest struct {
	Amount json.Number `json:"amount"`
}

// TransferRequest is the DTO for POST /account/transfer.
type TransferRequest struct {
	Amount        json.Number `json:"amount"`
	ReceiverEmail string      `json:"receiver_email"`
}
