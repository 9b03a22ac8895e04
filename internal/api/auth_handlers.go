package api

import (
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/transfa/wallet-service/internal/domain"
)

// RegisterHandler handles POST /auth/register.
func (h *WalletHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgBodyRequired)
		return
	}

	result, err := h.auth.Register(r.Context(), req)
	if err != nil {
		log.Printf("level=error component=api endpoint=register msg=\"registration failed\" err=%v", err)
		h.writeInternalError(w, err)
		return
	}
	h.writeJSON(w, result.StatusCode, result)
}

// LoginHandler handles POST /auth/login.
func (h *WalletHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.MsgBodyRequired)
		return
	}

	result, err := h.auth.Login(r.Context(), req, clientIP(r))
	if err != nil {
		log.Printf("level=error component=api endpoint=login msg=\"login failed\" err=%v", err)
		h.writeInternalError(w, err)
		return
	}
	h.writeJSON(w, result.StatusCode, result)
}

// clientIP extracts the caller's address for login throttling.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
