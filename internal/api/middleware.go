/**
 * @description
 * This file contains the bearer-token authentication middleware. Every route
 * except register, login, and the health check sits behind it. The middleware
 * validates the HS256 JWT issued at login and attaches the caller's identity
 * to the request context for downstream handlers.
 *
 * @dependencies
 * - context, encoding/json, fmt, net/http, strings: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: token parsing and validation.
 */

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/transfa/wallet-service/internal/domain"
)

// authContextKey is a custom type for context keys to avoid collisions.
type authContextKey string

const (
	authUserIDKey authContextKey = "authUserID"
	authEmailKey  authContextKey = "authEmail"
)

// BearerAuthMiddleware validates the Authorization header and stores the
// authenticated user's id and email in the request context.
func BearerAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, domain.MsgNoToken)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
				writeAuthError(w, domain.MsgNoToken)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				writeAuthError(w, domain.MsgInvalidToken)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, domain.MsgInvalidToken)
				return
			}

			// Numeric claims arrive as float64 from encoding/json.
			rawUserID, ok := claims["userId"].(float64)
			if !ok {
				writeAuthError(w, domain.MsgInvalidToken)
				return
			}
			email, _ := claims["email"].(string)

			ctx := context.WithValue(r.Context(), authUserIDKey, int64(rawUserID))
			ctx = context.WithValue(ctx, authEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// AuthUserID retrieves the authenticated user's id from the request context.
func AuthUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(authUserIDKey).(int64)
	return userID, ok
}

// AuthEmail retrieves the authenticated user's email from the request context.
func AuthEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(authEmailKey).(string)
	return email, ok
}
