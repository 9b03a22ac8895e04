/**
 * @description
 * User registration and login. Registration validates the profile payload,
 * consults the Karma blacklist, hashes the password with bcrypt, and creates
 * the user together with their zero-balance account in one database
 * transaction. Login verifies credentials and issues an HS256 JWT carrying
 * the user id and email.
 *
 * @dependencies
 * - context, errors, fmt, log, net/http, net/mail, strings, time: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: token issuance.
 * - golang.org/x/crypto/bcrypt: password hashing.
 * - internal/domain, internal/store: models and persistence.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/transfa/wallet-service/internal/domain"
	"github.com/transfa/wallet-service/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	dateOfBirthLayout = "2006-01-02"

	loginRateScope = "login"
)

// BlacklistChecker reports whether an email belongs to a blacklisted user.
// Implemented by pkg/karmaclient; nil disables the check.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, email string) (bool, error)
}

// RateLimiter is the distributed counter used to throttle login attempts.
// Implemented by RedisLoginRateLimiter; nil disables throttling.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// AuthService owns identity: registration, credential verification, and
// token issuance.
type AuthService struct {
	repo           store.Repository
	blacklist      BlacklistChecker
	rateLimiter    RateLimiter
	jwtSecret      []byte
	tokenTTL       time.Duration
	loginPerMinute int
}

// NewAuthService creates a new auth service instance.
func NewAuthService(repo store.Repository, blacklist BlacklistChecker, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		blacklist: blacklist,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// SetLoginRateLimiter wires an optional distributed login throttle.
func (s *AuthService) SetLoginRateLimiter(limiter RateLimiter, perMinute int) {
	s.rateLimiter = limiter
	s.loginPerMinute = perMinute
}

// validateRegistration checks the request payload field by field and returns
// the rejection message for the first failure, or "" when the payload is valid.
func validateRegistration(req domain.RegisterRequest) string {
	if strings.TrimSpace(req.Address) == "" {
		return domain.MsgAddressRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.MsgInvalidName
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return domain.MsgInvalidEmail
	}
	if strings.TrimSpace(req.City) == "" {
		return domain.MsgCityRequired
	}
	if _, err := time.Parse(dateOfBirthLayout, req.DateOfBirth); err != nil {
		return domain.MsgInvalidDOB
	}
	if req.LgaID <= 0 {
		return domain.MsgLgaRequired
	}
	if len(req.Password) < minPasswordLength {
		return domain.MsgInvalidPassword
	}
	return ""
}

// Register creates a new user and their account. Expected rejections
// (validation, blacklist, duplicate email) come back as typed results.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	if msg := validateRegistration(req); msg != "" {
		return &domain.AuthResult{StatusCode: http.StatusBadRequest, Message: msg}, nil
	}

	email := strings.TrimSpace(req.Email)

	if s.blacklist != nil {
		blacklisted, err := s.blacklist.IsBlacklisted(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("karma blacklist lookup: %w", err)
		}
		if blacklisted {
			return &domain.AuthResult{StatusCode: http.StatusBadRequest, Message: domain.MsgBlacklisted}, nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	dob, _ := time.Parse(dateOfBirthLayout, req.DateOfBirth)
	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		DateOfBirth:  dob,
		LgaID:        req.LgaID,
		City:         strings.TrimSpace(req.City),
		Address:      strings.TrimSpace(req.Address),
		PasswordHash: string(hash),
	}

	created, err := s.repo.CreateUserWithAccount(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return &domain.AuthResult{StatusCode: http.StatusBadRequest, Message: domain.MsgUserExists}, nil
		}
		return nil, fmt.Errorf("create user with account: %w", err)
	}

	return &domain.AuthResult{StatusCode: http.StatusCreated, Message: domain.MsgSuccess, User: created}, nil
}

// Login verifies credentials and issues a signed token. Unknown emails and
// wrong passwords produce the same 401 message.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest, clientIP string) (*domain.AuthResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return &domain.AuthResult{StatusCode: http.StatusBadRequest, Message: domain.MsgLoginError}, nil
	}

	if s.rateLimiter != nil && s.loginPerMinute > 0 {
		subject := email + "|" + clientIP
		count, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, loginRateScope, subject, s.loginPerMinute, time.Minute)
		if err != nil {
			// Throttling is best effort; a limiter outage must not lock users out.
			log.Printf("level=warn component=auth msg=\"login rate limiter unavailable\" err=%v", err)
		} else if count > s.loginPerMinute {
			log.Printf("level=warn component=auth msg=\"login throttled\" email=%s retry_after_s=%d", email, retryAfter)
			return &domain.AuthResult{StatusCode: http.StatusTooManyRequests, Message: domain.MsgTooManyLogins}, nil
		}
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &domain.AuthResult{StatusCode: http.StatusUnauthorized, Message: domain.MsgLoginError}, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return &domain.AuthResult{StatusCode: http.StatusUnauthorized, Message: domain.MsgLoginError}, nil
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &domain.AuthResult{StatusCode: http.StatusOK, Message: domain.MsgSuccess, User: user, Token: token}, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"iat":    now.Unix(),
		"exp":    now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
