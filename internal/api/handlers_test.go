package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/transfa/wallet-service/internal/app"
	"github.com/transfa/wallet-service/internal/domain"
	"github.com/transfa/wallet-service/internal/store"
)

// walletRepoStub backs the full router in tests with in-memory state.
type walletRepoStub struct {
	store.Repository

	users        map[int64]*domain.User
	accounts     map[int64]*domain.Account
	transactions []domain.Transaction
}

func newWalletRepoStub() *walletRepoStub {
	return &walletRepoStub{
		users:    map[int64]*domain.User{},
		accounts: map[int64]*domain.Account{},
	}
}

func (s *walletRepoStub) seed(userID int64, email string, balance domain.Kobo) {
	s.users[userID] = &domain.User{ID: userID, Email: email, Name: "Test User", City: "Lagos", Address: "1 Road"}
	account := &domain.Account{ID: userID + 1000, UserID: userID, Balance: balance}
	s.accounts[account.ID] = account
}

func (s *walletRepoStub) accountByUserID(userID int64) *domain.Account {
	for _, a := range s.accounts {
		if a.UserID == userID {
			return a
		}
	}
	return nil
}

func (s *walletRepoStub) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (s *walletRepoStub) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *walletRepoStub) CreateUserWithAccount(ctx context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, store.ErrUserExists
		}
	}
	created := *user
	created.ID = int64(len(s.users) + 1)
	s.users[created.ID] = &created
	account := &domain.Account{ID: created.ID + 1000, UserID: created.ID}
	s.accounts[account.ID] = account
	return &created, nil
}

func (s *walletRepoStub) FindAccountByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	if a := s.accountByUserID(userID); a != nil {
		copied := *a
		return &copied, nil
	}
	return nil, store.ErrAccountNotFound
}

func (s *walletRepoStub) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, u := range s.users {
		if u.Email == email {
			if a := s.accountByUserID(u.ID); a != nil {
				copied := *a
				return &copied, nil
			}
		}
	}
	return nil, store.ErrAccountNotFound
}

func (s *walletRepoStub) FindAccountWithOwner(ctx context.Context, userID int64) (*domain.AccountWithOwner, error) {
	a := s.accountByUserID(userID)
	u, ok := s.users[userID]
	if a == nil || !ok {
		return nil, store.ErrAccountNotFound
	}
	return &domain.AccountWithOwner{
		Account: *a,
		Owner:   domain.OwnerProfile{ID: u.ID, Name: u.Name, Email: u.Email, City: u.City, Address: u.Address},
	}, nil
}

func (s *walletRepoStub) CreditAccount(ctx context.Context, userID int64, amount domain.Kobo) (*domain.Account, error) {
	a := s.accountByUserID(userID)
	if a == nil {
		return nil, store.ErrAccountNotFound
	}
	a.Balance += amount
	copied := *a
	return &copied, nil
}

func (s *walletRepoStub) DebitAccount(ctx context.Context, userID int64, amount domain.Kobo) (*domain.Account, error) {
	a := s.accountByUserID(userID)
	if a == nil {
		return nil, store.ErrAccountNotFound
	}
	if a.Balance < amount {
		return nil, store.ErrInsufficientFunds
	}
	a.Balance -= amount
	copied := *a
	return &copied, nil
}

func (s *walletRepoStub) TransferBetweenAccounts(ctx context.Context, senderAccountID, receiverAccountID int64, amount domain.Kobo) (*domain.Account, error) {
	sender, ok := s.accounts[senderAccountID]
	if !ok {
		return nil, store.ErrAccountVanished
	}
	receiver, ok := s.accounts[receiverAccountID]
	if !ok {
		return nil, store.ErrAccountVanished
	}
	if sender.Balance < amount {
		return nil, store.ErrInsufficientFunds
	}
	sender.Balance -= amount
	receiver.Balance += amount
	copied := *sender
	return &copied, nil
}

func (s *walletRepoStub) AppendTransaction(ctx context.Context, entry domain.AuditEntry) error {
	s.transactions = append(s.transactions, domain.Transaction{
		ID:     int64(len(s.transactions) + 1),
		UserID: entry.UserID,
		Type:   entry.Type,
		Amount: entry.Amount,
	})
	return nil
}

func (s *walletRepoStub) FindTransactionsByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, txn := range s.transactions {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	return out, nil
}

// syncRecorder applies audit entries immediately so list assertions see them.
type syncRecorder struct {
	repo *walletRepoStub
}

func (r *syncRecorder) Record(entry domain.AuditEntry) {
	_ = r.repo.AppendTransaction(context.Background(), entry)
}

func newTestRouter(repo *walletRepoStub) http.Handler {
	ledger := app.NewService(repo, &syncRecorder{repo: repo})
	auth := app.NewAuthService(repo, nil, testSecret, time.Hour)
	return WalletRoutes(NewWalletHandlers(ledger, auth), testSecret)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func containsJSONMessage(body, message string) bool {
	return strings.Contains(body, message)
}

func TestFundEndpoint(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 20000) // 200.00
	router := newTestRouter(repo)
	token := signTestToken(t, testSecret, 1, "alice@example.com", time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/account/fund", token, `{"amount": 100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Account struct {
			Balance string `json:"balance"`
		} `json:"account"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != domain.MsgSuccess {
		t.Fatalf("expected message %q, got %q", domain.MsgSuccess, resp.Message)
	}
	if resp.Account.Balance != "300.00" {
		t.Fatalf("expected balance 300.00, got %q", resp.Account.Balance)
	}
}

func TestFundEndpointRejectsInvalidAmounts(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 20000)
	router := newTestRouter(repo)
	token := signTestToken(t, testSecret, 1, "alice@example.com", time.Hour)

	for _, body := range []string{
		`{"amount": 0}`,
		`{"amount": -5}`,
		`{"amount": "ten"}`,
		`{"amount": 10.005}`,
		`{}`,
	} {
		rec := doJSON(t, router, http.MethodPost, "/account/fund", token, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
		if !containsJSONMessage(rec.Body.String(), domain.MsgInvalidAmount) {
			t.Errorf("body %s: expected %q, got %s", body, domain.MsgInvalidAmount, rec.Body.String())
		}
	}
}

func TestFundEndpointRequiresToken(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 20000)
	router := newTestRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/account/fund", "", `{"amount": 100}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !containsJSONMessage(rec.Body.String(), domain.MsgNoToken) {
		t.Fatalf("expected %q, got %s", domain.MsgNoToken, rec.Body.String())
	}
}

func TestWithdrawEndpointInsufficientFunds(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 5000) // 50.00
	router := newTestRouter(repo)
	token := signTestToken(t, testSecret, 1, "alice@example.com", time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/account/withdraw", token, `{"amount": 100}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if !containsJSONMessage(rec.Body.String(), domain.MsgInsufficientFunds) {
		t.Fatalf("expected %q, got %s", domain.MsgInsufficientFunds, rec.Body.String())
	}
	if balance := repo.accountByUserID(1).Balance; balance != 5000 {
		t.Fatalf("balance must stay at 50.00, got %s", balance)
	}
}

func TestTransferEndpoint(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 20000) // 200.00
	repo.seed(2, "bob@example.com", 10000)   // 100.00
	router := newTestRouter(repo)
	token := signTestToken(t, testSecret, 1, "alice@example.com", time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/account/transfer", token,
		`{"amount": "100.00", "receiver_email": "bob@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if repo.accountByUserID(1).Balance != 10000 {
		t.Fatalf("expected sender balance 100.00, got %s", repo.accountByUserID(1).Balance)
	}
	if repo.accountByUserID(2).Balance != 20000 {
		t.Fatalf("expected receiver balance 200.00, got %s", repo.accountByUserID(2).Balance)
	}
	if len(repo.transactions) != 2 {
		t.Fatalf("expected transferOut and transferIn log rows, got %d", len(repo.transactions))
	}
}

func TestTransferEndpointRejectsMalformedReceiverEmail(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 20000)
	router := newTestRouter(repo)
	token := signTestToken(t, testSecret, 1, "alice@example.com", time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/account/transfer", token,
		`{"amount": 100, "receiver_email": "not-an-email"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !containsJSONMessage(rec.Body.String(), domain.MsgReceiverNotFound) {
		t.Fatalf("expected %q, got %s", domain.MsgReceiverNotFound, rec.Body.String())
	}
}

func TestGetAccountEndpoint(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 20000)
	router := newTestRouter(repo)
	token := signTestToken(t, testSecret, 1, "alice@example.com", time.Hour)

	rec := doJSON(t, router, http.MethodGet, "/account/1", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Account *domain.Account      `json:"account"`
		User    *domain.OwnerProfile `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Account == nil || resp.User == nil {
		t.Fatalf("expected account and user in response, got %s", rec.Body.String())
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("expected owner email, got %q", resp.User.Email)
	}

	rec = doJSON(t, router, http.MethodGet, "/account/99", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown owner, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/account/abc", token, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestListTransactionsEndpoint(t *testing.T) {
	repo := newWalletRepoStub()
	repo.seed(1, "alice@example.com", 20000)
	router := newTestRouter(repo)
	token := signTestToken(t, testSecret, 1, "alice@example.com", time.Hour)

	// Fund twice so the history has entries.
	doJSON(t, router, http.MethodPost, "/account/fund", token, `{"amount": 10}`)
	doJSON(t, router, http.MethodPost, "/account/fund", token, `{"amount": 20}`)

	rec := doJSON(t, router, http.MethodGet, "/transactions/1", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}

	rec = doJSON(t, router, http.MethodGet, "/transactions/42", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	repo := newWalletRepoStub()
	router := newTestRouter(repo)

	registerBody := `{
		"email": "carol@example.com",
		"name": "Carol Test",
		"date_of_birth": "1992-08-01",
		"lga_id": 5,
		"city": "Abuja",
		"address": "2 Crescent",
		"password": "password1"
	}`
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", registerBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password1") {
		t.Fatal("response must not leak the password")
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", `{"email": "carol@example.com", "password": "password1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token in the login response")
	}

	// The issued token must open the authenticated routes.
	rec = doJSON(t, router, http.MethodPost, "/account/fund", resp.Token, `{"amount": 100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 funding with issued token, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidationFailure(t *testing.T) {
	repo := newWalletRepoStub()
	router := newTestRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", `{"email": "bad", "password": "short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
