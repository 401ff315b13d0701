package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store. The *gorm.DB must be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func newAccount(role models.Role) (models.Account, error) {
	switch role {
	case models.RoleCustomer:
		return &models.Customer{}, nil
	case models.RoleDriver:
		return &models.Driver{}, nil
	case models.RoleAdmin:
		return &models.Admin{}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func (s *GormStore) query(ctx context.Context, role models.Role) *gorm.DB {
	q := s.db.WithContext(ctx)
	if role == models.RoleDriver {
		q = q.Preload("Vehicle")
	}
	return q
}

func (s *GormStore) findOne(ctx context.Context, role models.Role, where string, arg interface{}) (models.Account, error) {
	account, err := newAccount(role)
	if err != nil {
		return nil, err
	}
	if err := s.query(ctx, role).Where(where, arg).First(account).Error; err != nil {
		return nil, translate(err)
	}
	return account, nil
}

func (s *GormStore) FindByEmail(ctx context.Context, role models.Role, email string) (models.Account, error) {
	return s.findOne(ctx, role, "email = ?", email)
}

func (s *GormStore) FindByMobile(ctx context.Context, role models.Role, mobile string) (models.Account, error) {
	if role == models.RoleAdmin {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, role, "mobile = ?", mobile)
}

func (s *GormStore) FindByID(ctx context.Context, role models.Role, id uint) (models.Account, error) {
	return s.findOne(ctx, role, "id = ?", id)
}

func (s *GormStore) Create(ctx context.Context, account models.Account) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Vehicle is inserted through the has-one association.
		if err := tx.Create(account).Error; err != nil {
			return err
		}
		role := account.AccountRole()
		if !role.SharesIdentity() {
			return nil
		}
		return tx.Create(&models.Identity{
			Role:      role,
			AccountID: account.AccountID(),
			Email:     account.AccountEmail(),
			Mobile:    account.AccountMobile(),
		}).Error
	}))
}

func (s *GormStore) Update(ctx context.Context, role models.Role, id uint, patch AccountPatch) error {
	if !role.Verifiable() {
		return fmt.Errorf("%s accounts have no confirmation state", role)
	}
	if patch.empty() {
		return nil
	}
	updates := map[string]interface{}{}
	if patch.ConfirmEmail {
		updates["email_confirmed"] = true
	}
	if patch.ConfirmMobile {
		updates["mobile_confirmed"] = true
	}
	model, err := newAccount(role)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, role models.Role, id uint) error {
	model, err := newAccount(role)
	if err != nil {
		return err
	}
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if role == models.RoleDriver {
			if err := tx.Where("driver_id = ?", id).Delete(&models.Vehicle{}).Error; err != nil {
				return err
			}
		}
		if role.SharesIdentity() {
			if err := tx.Where("role = ? AND account_id = ?", role, id).Delete(&models.Identity{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

func (s *GormStore) CreateTokens(ctx context.Context, tokens ...models.VerificationToken) error {
	if len(tokens) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Create(&tokens).Error)
}

func (s *GormStore) FindToken(ctx context.Context, channel models.Channel, value string) (models.VerificationToken, error) {
	var tok models.VerificationToken
	err := s.db.WithContext(ctx).
		Where("token = ? AND channel = ?", value, channel).
		First(&tok).Error
	return tok, translate(err)
}

func (s *GormStore) DeleteToken(ctx context.Context, channel models.Channel, value string) error {
	res := s.db.WithContext(ctx).
		Where("token = ? AND channel = ?", value, channel).
		Delete(&models.VerificationToken{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteTokensFor(ctx context.Context, email string) error {
	return translate(s.db.WithContext(ctx).
		Where("user_email = ?", email).
		Delete(&models.VerificationToken{}).Error)
}

func (s *GormStore) RunAtomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
