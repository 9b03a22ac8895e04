/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the wallet-service. By defining an interface,
 * we decouple the ledger and auth logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/transfa/wallet-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	// CreateUserWithAccount inserts the user row and its zero-balance account
	// in one database transaction; either both rows exist afterwards or neither.
	CreateUserWithAccount(ctx context.Context, user *domain.User) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID int64) (*domain.User, error)

	// Account methods
	FindAccountByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	// FindAccountByEmail resolves an account through its owner's email.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindAccountWithOwner(ctx context.Context, userID int64) (*domain.AccountWithOwner, error)
	// CreditAccount adds amount to the account balance as a single atomic
	// statement and returns the updated row.
	CreditAccount(ctx context.Context, userID int64, amount domain.Kobo) (*domain.Account, error)
	// DebitAccount subtracts amount after validating funds under a row lock,
	// all inside one transaction. Returns ErrInsufficientFunds without
	// touching the row when the balance cannot cover the amount.
	DebitAccount(ctx context.Context, userID int64, amount domain.Kobo) (*domain.Account, error)
	// TransferBetweenAccounts moves amount from the sender account to the
	// receiver account inside one transaction. Either both rows update or
	// neither does; a vanished row aborts the whole transfer. Returns the
	// sender's updated account.
	TransferBetweenAccounts(ctx context.Context, senderAccountID, receiverAccountID int64, amount domain.Kobo) (*domain.Account, error)

	// Transaction log methods
	AppendTransaction(ctx context.Context, entry domain.AuditEntry) error
	FindTransactionsByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error)
}
