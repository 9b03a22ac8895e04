/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * for users, accounts, and the append-only transactions log.
 *
 * Balance mutations are where the correctness lives:
 * - Credits are a single atomic `balance = balance + $1` statement.
 * - Debits validate funds under `SELECT ... FOR UPDATE` inside one transaction,
 *   so two concurrent withdrawals cannot both pass the funds check.
 * - Transfers lock both rows in ascending account-id order inside one
 *   transaction; crossing transfers therefore cannot deadlock, and a row that
 *   vanishes mid-flight rolls the whole pair back.
 *
 * @dependencies
 * - context, errors, fmt: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transfa/wallet-service/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountVanished indicates a balance update matched zero rows after the
	// account had already been resolved. The enclosing transaction is rolled
	// back and the condition is treated as fatal, never as a soft failure.
	ErrAccountVanished = errors.New("account vanished during update")
)

const uniqueViolationCode = "23505"

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUserWithAccount inserts the user and a zero-balance account for them
// in one transaction. A duplicate email surfaces as ErrUserExists.
func (r *PostgresRepository) CreateUserWithAccount(ctx context.Context, user *domain.User) (*domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := *user
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, name, date_of_birth, lga_id, city, address, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.DateOfBirth, user.LgaID, user.City, user.Address, user.PasswordHash).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO accounts (user_id, balance) VALUES ($1, 0)`, created.ID); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

// FindUserByEmail retrieves a user by their email address.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, email, name, date_of_birth, lga_id, city, address, password, created_at, updated_at
		FROM users WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.DateOfBirth, &user.LgaID,
		&user.City, &user.Address, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user by their primary key.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, email, name, date_of_birth, lga_id, city, address, password, created_at, updated_at
		FROM users WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Email, &user.Name, &user.DateOfBirth, &user.LgaID,
		&user.City, &user.Address, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindAccountByUserID retrieves the account owned by the given user.
func (r *PostgresRepository) FindAccountByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, balance, created_at, updated_at FROM accounts WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&account.ID, &account.UserID, &account.Balance, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountByEmail resolves an account through its owner's email address.
func (r *PostgresRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT a.id, a.user_id, a.balance, a.created_at, a.updated_at
		FROM accounts a
		INNER JOIN users u ON u.id = a.user_id
		WHERE u.email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&account.ID, &account.UserID, &account.Balance, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountWithOwner returns the account joined with the owner profile
// subset used by the account read endpoint.
func (r *PostgresRepository) FindAccountWithOwner(ctx context.Context, userID int64) (*domain.AccountWithOwner, error) {
	var out domain.AccountWithOwner
	query := `
		SELECT a.id, a.user_id, a.balance, a.created_at, a.updated_at,
		       u.id, u.name, u.address, u.city, u.date_of_birth, u.email, u.lga_id
		FROM accounts a
		INNER JOIN users u ON u.id = a.user_id
		WHERE u.id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&out.Account.ID, &out.Account.UserID, &out.Account.Balance, &out.Account.CreatedAt, &out.Account.UpdatedAt,
		&out.Owner.ID, &out.Owner.Name, &out.Owner.Address, &out.Owner.City, &out.Owner.DateOfBirth, &out.Owner.Email, &out.Owner.LgaID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &out, nil
}

// CreditAccount adds amount to the balance as one atomic statement. There is
// no read-then-write window for a concurrent mutation to race into.
func (r *PostgresRepository) CreditAccount(ctx context.Context, userID int64, amount domain.Kobo) (*domain.Account, error) {
	var account domain.Account
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, user_id, balance, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, amount, userID).Scan(
		&account.ID, &account.UserID, &account.Balance, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// DebitAccount subtracts amount from the balance. The funds check happens
// under a row lock so a concurrent debit cannot also pass it.
func (r *PostgresRepository) DebitAccount(ctx context.Context, userID int64, amount domain.Kobo) (*domain.Account, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var balance domain.Kobo
	err = tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if balance < amount {
		return nil, ErrInsufficientFunds
	}

	var account domain.Account
	err = tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, user_id, balance, created_at, updated_at
	`, amount, userID).Scan(
		&account.ID, &account.UserID, &account.Balance, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountVanished
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &account, nil
}

// TransferBetweenAccounts moves amount between two accounts atomically.
// Rows are locked in ascending id order so two crossing transfers always
// acquire their locks in the same order.
func (r *PostgresRepository) TransferBetweenAccounts(ctx context.Context, senderAccountID, receiverAccountID int64, amount domain.Kobo) (*domain.Account, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lockOrder := []int64{senderAccountID, receiverAccountID}
	if receiverAccountID < senderAccountID {
		lockOrder[0], lockOrder[1] = receiverAccountID, senderAccountID
	}
	balances := make(map[int64]domain.Kobo, 2)
	for _, id := range lockOrder {
		var balance domain.Kobo
		if err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("account %d: %w", id, ErrAccountVanished)
			}
			return nil, err
		}
		balances[id] = balance
	}

	if balances[senderAccountID] < amount {
		return nil, ErrInsufficientFunds
	}

	var sender domain.Account
	err = tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, user_id, balance, created_at, updated_at
	`, amount, senderAccountID).Scan(
		&sender.ID, &sender.UserID, &sender.Balance, &sender.CreatedAt, &sender.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sender account %d: %w", senderAccountID, ErrAccountVanished)
		}
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2
	`, amount, receiverAccountID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("receiver account %d: %w", receiverAccountID, ErrAccountVanished)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &sender, nil
}

// AppendTransaction inserts one audit row into the append-only log.
func (r *PostgresRepository) AppendTransaction(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (user_id, transaction_type, amount, reference)
		VALUES ($1, $2, $3, $4)
	`, entry.UserID, entry.Type, entry.Amount, entry.Reference)
	return err
}

// FindTransactionsByUserID lists a user's transactions, newest first.
func (r *PostgresRepository) FindTransactionsByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, transaction_type, amount, reference, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount, &txn.Reference, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}
