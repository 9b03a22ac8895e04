/**
 * @description
 * This file sets up the HTTP router for the wallet-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies the
 * authentication middleware to everything except registration, login, and the
 * health check.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// WalletRoutes creates and returns the router for the wallet service.
func WalletRoutes(h *WalletHandlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	// Standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)
	})

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(BearerAuthMiddleware(jwtSecret))

		r.Route("/account", func(r chi.Router) {
			r.Post("/fund", h.FundHandler)
			r.Post("/withdraw", h.WithdrawHandler)
			r.Post("/transfer", h.TransferHandler)
			r.Get("/{id}", h.GetAccountHandler)
		})

		r.Get("/transactions/{userId}", h.ListTransactionsHandler)
	})

	return r
}
