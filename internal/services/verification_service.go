package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
	"go.opentelemetry.io/otel/attribute"
)

type ConfirmationResult struct {
	Role    models.Role
	Channel models.Channel
	Message string
}

type VerificationService struct {
	store store.Store
}

func NewVerificationService(st store.Store) *VerificationService {
	return &VerificationService{store: st}
}

// Redeem consumes a verification token and confirms the matching channel of
// the account it was issued for. A token is accepted once; any unknown,
// consumed or mismatched token yields ErrInvalidToken.
func (s *VerificationService) Redeem(ctx context.Context, role models.Role, channel models.Channel, value string) (*ConfirmationResult, error) {
	ctx, span := tracer.Start(ctx, "VerificationService.Redeem")
	defer span.End()
	span.SetAttributes(attribute.String("account.role", string(role)), attribute.String("channel", string(channel)))

	if !role.Verifiable() || value == "" {
		return nil, ErrInvalidToken
	}
	if _, ok := models.ParseChannel(string(channel)); !ok {
		return nil, ErrInvalidToken
	}

	var accountID uint
	err := s.store.RunAtomic(ctx, func(tx store.Store) error {
		token, err := tx.FindToken(ctx, channel, value)
		if err != nil {
			return err
		}
		account, err := tx.FindByEmail(ctx, role, token.UserEmail)
		if err != nil {
			return err
		}
		accountID = account.AccountID()
		if err := tx.Update(ctx, role, accountID, store.PatchFor(channel)); err != nil {
			return err
		}
		return tx.DeleteToken(ctx, channel, value)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("redeem %s token: %w", channel, err)
	}

	slog.InfoContext(ctx, "channel confirmed", "role", role, "account_id", accountID, "channel", channel)

	msg := "Email address confirmed successfully!"
	if channel == models.ChannelMobile {
		msg = "Mobile number confirmed successfully!"
	}
	return &ConfirmationResult{Role: role, Channel: channel, Message: msg}, nil
}
