package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no account matches, so unknown emails
// cost as much as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ridehail-auth-dummy-password"), PasswordCost)

type SessionService struct {
	store  store.Store
	tokens *TokenIssuer
}

func NewSessionService(st store.Store, tokens *TokenIssuer) *SessionService {
	return &SessionService{store: st, tokens: tokens}
}

func (s *SessionService) Login(ctx context.Context, role models.Role, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Login")
	defer span.End()

	if _, ok := models.ParseRole(string(role)); !ok {
		return nil, ErrInvalidCredentials
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.store.FindByEmail(ctx, role, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash()), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.EmailVerified() {
		return nil, ErrEmailNotVerified
	}
	if !account.MobileVerified() {
		return nil, ErrMobileNotVerified
	}

	token, expiresAt, err := s.tokens.Issue(role, account.AccountID())
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "login succeeded", "role", role, "account_id", account.AccountID())
	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        dto.NewAccountSummary(account),
	}, nil
}
