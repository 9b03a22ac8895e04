/**
 * @description
 * This file contains the HTTP handlers for the wallet-service's ledger
 * endpoints. Handlers parse and validate incoming requests once at the
 * boundary, call the ledger service, and translate its typed results into
 * HTTP responses. They act as the bridge between the web layer and the
 * business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http, strconv: Standard Go libraries.
 * - github.com/go-chi/chi/v5: path parameter extraction.
 * - internal/app, internal/domain: for service logic and models.
 */

package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/transfa/wallet-service/internal/app"
	"github.com/transfa/wallet-service/internal/domain"
)

// WalletHandlers holds the services the HTTP layer depends on.
type WalletHandlers struct {
	ledger *app.Service
	auth   *app.AuthService
}

// NewWalletHandlers creates a new instance of WalletHandlers.
func NewWalletHandlers(ledger *app.Service, auth *app.AuthService) *WalletHandlers {
	return &WalletHandlers{ledger: ledger, auth: auth}
}

// FundHandler handles POST /account/fund for the authenticated user.
func (h *WalletHandlers) FundHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := AuthUserID(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, domain.MsgInvalidToken)
		return
	}

	var req domain.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgBodyRequired)
		return
	}
	amount, err := domain.ParseAmount(req.Amount.String())
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgInvalidAmount)
		return
	}

	result, err := h.ledger.Fund(r.Context(), userID, amount)
	if err != nil {
		log.Printf("level=error component=api endpoint=fund msg=\"ledger operation failed\" user_id=%d err=%v", userID, err)
		h.writeInternalError(w, err)
		return
	}
	h.writeResult(w, result)
}

// WithdrawHandler handles POST /account/withdraw for the authenticated user.
func (h *WalletHandlers) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := AuthUserID(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, domain.MsgInvalidToken)
		return
	}

	var req domain.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgBodyRequired)
		return
	}
	amount, err := domain.ParseAmount(req.Amount.String())
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgInvalidAmount)
		return
	}

	result, err := h.ledger.Withdraw(r.Context(), userID, amount)
	if err != nil {
		log.Printf("level=error component=api endpoint=withdraw msg=\"ledger operation failed\" user_id=%d err=%v", userID, err)
		h.writeInternalError(w, err)
		return
	}
	h.writeResult(w, result)
}

// TransferHandler handles POST /account/transfer for the authenticated user.
func (h *WalletHandlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := AuthUserID(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, domain.MsgInvalidToken)
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgBodyRequired)
		return
	}
	amount, err := domain.ParseAmount(req.Amount.String())
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgInvalidAmount)
		return
	}
	receiverEmail := strings.TrimSpace(req.ReceiverEmail)
	if _, err := mail.ParseAddress(receiverEmail); err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgReceiverNotFound)
		return
	}

	result, err := h.ledger.Transfer(r.Context(), senderID, amount, receiverEmail)
	if err != nil {
		log.Printf("level=error component=api endpoint=transfer msg=\"ledger operation failed\" user_id=%d err=%v", senderID, err)
		h.writeInternalError(w, err)
		return
	}
	h.writeResult(w, result)
}

// GetAccountHandler handles GET /account/{id}, where id is the owner's user id.
func (h *WalletHandlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgInvalidUser)
		return
	}

	result, err := h.ledger.GetAccount(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=get_account msg=\"ledger operation failed\" user_id=%d err=%v", userID, err)
		h.writeInternalError(w, err)
		return
	}
	h.writeResult(w, result)
}

// ListTransactionsHandler handles GET /transactions/{userId}.
func (h *WalletHandlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgInvalidUser)
		return
	}

	transactions, reject, err := h.ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_transactions msg=\"ledger operation failed\" user_id=%d err=%v", userID, err)
		h.writeInternalError(w, err)
		return
	}
	if reject != nil {
		h.writeMessage(w, reject.StatusCode, reject.Message)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      domain.MsgSuccess,
		"transactions": transactions,
	})
}

// writeResult renders a typed ledger result.
func (h *WalletHandlers) writeResult(w http.ResponseWriter, result *domain.LedgerResult) {
	h.writeJSON(w, result.StatusCode, result)
}

// writeJSON is a helper for writing JSON responses.
func (h *WalletHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

// writeMessage is a helper for writing message-only JSON responses.
func (h *WalletHandlers) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}

// writeInternalError surfaces unexpected failures as a 500 with the raw
// message, mirroring the rest of the API's {message} envelope.
func (h *WalletHandlers) writeInternalError(w http.ResponseWriter, err error) {
	h.writeMessage(w, http.StatusInternalServerError, err.Error())
}
