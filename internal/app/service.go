/**
 * @description
 * This file contains the core business logic for the wallet-service: the ledger
 * engine. The `Service` struct orchestrates every balance mutation — funding,
 * withdrawal, and peer-to-peer transfer — coordinating between the database
 * repository and the asynchronous audit recorder.
 *
 * Key features:
 * - Expected business outcomes (missing account, insufficient funds,
 *   self-transfer) are returned as typed LedgerResult values, never as errors.
 * - Balance mutations delegate to the repository's atomic operations; the
 *   engine itself never caches a balance across calls.
 * - Transaction-log appends are fire-and-forget through the audit recorder and
 *   can never fail a committed balance mutation.
 *
 * @dependencies
 * - context, errors, fmt, net/http: Standard Go libraries.
 * - github.com/google/uuid: transfer reference generation.
 * - internal/domain, internal/store: For domain models and data access.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/transfa/wallet-service/internal/domain"
	"github.com/transfa/wallet-service/internal/store"
)

// Recorder accepts audit entries for asynchronous persistence.
type Recorder interface {
	Record(entry domain.AuditEntry)
}

// Service provides the ledger operations of the wallet.
type Service struct {
	repo  store.Repository
	audit Recorder
}

// NewService creates a new ledger service instance.
func NewService(repo store.Repository, audit Recorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// Fund credits the user's account with amount and records a `fund` audit entry.
func (s *Service) Fund(ctx context.Context, userID int64, amount domain.Kobo) (*domain.LedgerResult, error) {
	account, err := s.repo.CreditAccount(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return &domain.LedgerResult{StatusCode: http.StatusNotFound, Message: domain.MsgAccountNotFound}, nil
		}
		return nil, fmt.Errorf("fund account for user %d: %w", userID, err)
	}

	s.audit.Record(domain.AuditEntry{UserID: userID, Type: domain.TransactionFund, Amount: amount})

	return &domain.LedgerResult{StatusCode: http.StatusOK, Message: domain.MsgSuccess, Account: account}, nil
}

// Withdraw debits the user's account by amount. Funds are validated under a
// row lock inside the store, so concurrent withdrawals cannot overdraw.
func (s *Service) Withdraw(ctx context.Context, userID int64, amount domain.Kobo) (*domain.LedgerResult, error) {
	account, err := s.repo.DebitAccount(ctx, userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountNotFound):
			return &domain.LedgerResult{StatusCode: http.StatusNotFound, Message: domain.MsgAccountNotFound}, nil
		case errors.Is(err, store.ErrInsufficientFunds):
			return &domain.LedgerResult{StatusCode: http.StatusPaymentRequired, Message: domain.MsgInsufficientFunds}, nil
		}
		return nil, fmt.Errorf("withdraw from account for user %d: %w", userID, err)
	}

	s.audit.Record(domain.AuditEntry{UserID: userID, Type: domain.TransactionWithdraw, Amount: amount})

	return &domain.LedgerResult{StatusCode: http.StatusOK, Message: domain.MsgSuccess, Account: account}, nil
}

// Transfer moves amount from the sender's account to the account owned by
// receiverEmail. Both rows are updated inside one database transaction; the
// pair of audit entries shares a generated reference.
func (s *Service) Transfer(ctx context.Context, senderUserID int64, amount domain.Kobo, receiverEmail string) (*domain.LedgerResult, error) {
	senderAccount, err := s.repo.FindAccountByUserID(ctx, senderUserID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return &domain.LedgerResult{StatusCode: http.StatusNotFound, Message: domain.MsgAccountNotFound}, nil
		}
		return nil, fmt.Errorf("resolve sender account for user %d: %w", senderUserID, err)
	}

	// Early rejection on the balance read; the authoritative check happens
	// again under the row lock inside TransferBetweenAccounts.
	if senderAccount.Balance < amount {
		return &domain.LedgerResult{StatusCode: http.StatusPaymentRequired, Message: domain.MsgInsufficientFunds}, nil
	}

	receiverAccount, err := s.repo.FindAccountByEmail(ctx, receiverEmail)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return &domain.LedgerResult{StatusCode: http.StatusNotFound, Message: domain.MsgReceiverNotFound}, nil
		}
		return nil, fmt.Errorf("resolve receiver account by email: %w", err)
	}

	if receiverAccount.ID == senderAccount.ID {
		return &domain.LedgerResult{StatusCode: http.StatusPaymentRequired, Message: domain.MsgSameAccountTransfer}, nil
	}

	updatedSender, err := s.repo.TransferBetweenAccounts(ctx, senderAccount.ID, receiverAccount.ID, amount)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return &domain.LedgerResult{StatusCode: http.StatusPaymentRequired, Message: domain.MsgInsufficientFunds}, nil
		}
		return nil, fmt.Errorf("transfer transaction failed: %w", err)
	}

	reference := uuid.NewString()
	s.audit.Record(domain.AuditEntry{UserID: senderUserID, Type: domain.TransactionTransferOut, Amount: amount, Reference: &reference})
	s.audit.Record(domain.AuditEntry{UserID: receiverAccount.UserID, Type: domain.TransactionTransferIn, Amount: amount, Reference: &reference})

	return &domain.LedgerResult{StatusCode: http.StatusOK, Message: domain.MsgSuccess, Account: updatedSender}, nil
}

// GetAccount returns the account joined with its owner's profile subset.
func (s *Service) GetAccount(ctx context.Context, userID int64) (*domain.LedgerResult, error) {
	joined, err := s.repo.FindAccountWithOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return &domain.LedgerResult{StatusCode: http.StatusNotFound, Message: domain.MsgAccountNotFound}, nil
		}
		return nil, fmt.Errorf("load account with owner for user %d: %w", userID, err)
	}
	return &domain.LedgerResult{
		StatusCode: http.StatusOK,
		Message:    domain.MsgSuccess,
		Account:    &joined.Account,
		Owner:      &joined.Owner,
	}, nil
}

// ListTransactions returns the user's transaction history, newest first.
// A nonexistent user yields a 404 result.
func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, *domain.LedgerResult, error) {
	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &domain.LedgerResult{StatusCode: http.StatusNotFound, Message: domain.MsgInvalidUser}, nil
		}
		return nil, nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}

	transactions, err := s.repo.FindTransactionsByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}
	return transactions, nil, nil
}
