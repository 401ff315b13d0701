// Package store persists accounts and verification tokens.
package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// AccountPatch lists the confirmation flags to raise. Flags can only be set,
// never cleared.
type AccountPatch struct {
	ConfirmEmail  bool
	ConfirmMobile bool
}

// PatchFor returns the patch that confirms the given channel.
func PatchFor(channel models.Channel) AccountPatch {
	switch channel {
	case models.ChannelEmail:
		return AccountPatch{ConfirmEmail: true}
	case models.ChannelMobile:
		return AccountPatch{ConfirmMobile: true}
	default:
		return AccountPatch{}
	}
}

func (p AccountPatch) empty() bool {
	return !p.ConfirmEmail && !p.ConfirmMobile
}

// Store is the credential store. Lookups return ErrNotFound when nothing
// matches; Create returns ErrDuplicate when an email, mobile or plate number
// is already taken.
type Store interface {
	FindByEmail(ctx context.Context, role models.Role, email string) (models.Account, error)
	FindByMobile(ctx context.Context, role models.Role, mobile string) (models.Account, error)
	FindByID(ctx context.Context, role models.Role, id uint) (models.Account, error)

	// Create inserts the account and, for customers and drivers, claims its
	// email and mobile in the shared identity index. The store assigns the id.
	Create(ctx context.Context, account models.Account) error
	Update(ctx context.Context, role models.Role, id uint, patch AccountPatch) error
	// Delete removes the account together with its vehicle and identity claim.
	Delete(ctx context.Context, role models.Role, id uint) error

	CreateTokens(ctx context.Context, tokens ...models.VerificationToken) error
	FindToken(ctx context.Context, channel models.Channel, value string) (models.VerificationToken, error)
	DeleteToken(ctx context.Context, channel models.Channel, value string) error
	// DeleteTokensFor removes every token issued for the email.
	DeleteTokensFor(ctx context.Context, email string) error

	// RunAtomic runs fn against a transactional view of the store. Every write
	// made through tx commits if fn returns nil and is discarded otherwise.
	RunAtomic(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
}
