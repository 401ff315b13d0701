package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/config"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/media"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/notify"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 12

const SignupSucceeded = "You signed up successfully, please verify your email and mobile number to be able to login"

var tracer = otel.Tracer("github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/services")

// DriverDocuments are the two images a driver uploads at signup.
type DriverDocuments struct {
	NationalID   media.Document
	DriveLicense media.Document
}

type ProvisioningService struct {
	store    store.Store
	notifier notify.Notifier
	uploader media.Uploader
	cfg      *config.Config
	hashCost int
	now      func() time.Time
}

func NewProvisioningService(st store.Store, notifier notify.Notifier, uploader media.Uploader, cfg *config.Config) *ProvisioningService {
	return &ProvisioningService{
		store:    st,
		notifier: notifier,
		uploader: uploader,
		cfg:      cfg,
		hashCost: PasswordCost,
		now:      time.Now,
	}
}

func (s *ProvisioningService) SignupCustomer(ctx context.Context, req *dto.CustomerSignupRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "ProvisioningService.SignupCustomer")
	defer span.End()

	p, err := validateProfile(req, s.cfg.DefaultRegion)
	if err != nil {
		return "", err
	}
	if err := s.ensureIdentityFree(ctx, p.Email, p.Mobile); err != nil {
		return "", err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return "", s.fail(ctx, span, models.RoleCustomer, "hash password", err)
	}

	customer := &models.Customer{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Mobile:    p.Mobile,
		Password:  hash,
	}
	if err := s.provision(ctx, span, customer); err != nil {
		return "", err
	}
	return SignupSucceeded, nil
}

func (s *ProvisioningService) SignupDriver(ctx context.Context, req *dto.DriverSignupRequest, docs DriverDocuments) (string, error) {
	ctx, span := tracer.Start(ctx, "ProvisioningService.SignupDriver")
	defer span.End()

	profileReq := req.Profile()
	p, err := validateProfile(&profileReq, s.cfg.DefaultRegion)
	if err != nil {
		return "", err
	}
	if err := validateVehicle(req, s.now()); err != nil {
		return "", err
	}
	if docs.NationalID.Content == nil || docs.DriveLicense.Content == nil {
		return "", invalid("national id and drive license images are required")
	}
	if err := s.ensureIdentityFree(ctx, p.Email, p.Mobile); err != nil {
		return "", err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return "", s.fail(ctx, span, models.RoleDriver, "hash password", err)
	}

	nationalIDURL, err := s.upload(ctx, docs.NationalID)
	if err != nil {
		return "", err
	}
	driveLicenseURL, err := s.upload(ctx, docs.DriveLicense)
	if err != nil {
		return "", err
	}

	driver := &models.Driver{
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           p.Email,
		Mobile:          p.Mobile,
		Password:        hash,
		NationalIDURL:   nationalIDURL,
		DriveLicenseURL: driveLicenseURL,
		Vehicle: &models.Vehicle{
			Model:    strings.TrimSpace(req.VehicleModel),
			Year:     req.VehicleYear,
			Color:    strings.TrimSpace(req.VehicleColor),
			PlateNum: strings.ToUpper(strings.TrimSpace(req.VehiclePlateNum)),
		},
	}
	if err := s.provision(ctx, span, driver); err != nil {
		return "", err
	}
	return SignupSucceeded, nil
}

// CreateAdmin inserts an admin account. Admins skip confirmation and can log
// in right away.
func (s *ProvisioningService) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*models.Admin, error) {
	ctx, span := tracer.Start(ctx, "ProvisioningService.CreateAdmin")
	defer span.End()

	name, err := validateAdminName(req.Name)
	if err != nil {
		return nil, err
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	_, err = s.store.FindByEmail(ctx, models.RoleAdmin, email)
	switch {
	case err == nil:
		return nil, errEmailTaken
	case !errors.Is(err, store.ErrNotFound):
		return nil, s.fail(ctx, span, models.RoleAdmin, "lookup email", err)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, s.fail(ctx, span, models.RoleAdmin, "hash password", err)
	}
	admin := &models.Admin{Name: name, Email: email, Password: hash}
	if err := s.store.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errEmailTaken
		}
		return nil, s.fail(ctx, span, models.RoleAdmin, "create account", err)
	}

	slog.InfoContext(ctx, "admin created", "account_id", admin.ID)
	return admin, nil
}

// ensureIdentityFree checks email and mobile against both customers and
// drivers. The identity index enforces the same rule on insert.
func (s *ProvisioningService) ensureIdentityFree(ctx context.Context, email, mobile string) error {
	for _, role := range []models.Role{models.RoleCustomer, models.RoleDriver} {
		_, err := s.store.FindByEmail(ctx, role, email)
		if err == nil {
			return errEmailTaken
		}
		if !errors.Is(err, store.ErrNotFound) {
			return s.fail(ctx, trace.SpanFromContext(ctx), role, "lookup email", err)
		}
	}
	for _, role := range []models.Role{models.RoleCustomer, models.RoleDriver} {
		_, err := s.store.FindByMobile(ctx, role, mobile)
		if err == nil {
			return errMobileTaken
		}
		if !errors.Is(err, store.ErrNotFound) {
			return s.fail(ctx, trace.SpanFromContext(ctx), role, "lookup mobile", err)
		}
	}
	return nil
}

func (s *ProvisioningService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *ProvisioningService) upload(ctx context.Context, doc media.Document) (string, error) {
	url, err := s.uploader.UploadImage(ctx, doc)
	if err != nil {
		slog.WarnContext(ctx, "document upload failed", "field", doc.Field, "error", err)
		return "", fmt.Errorf("%w: %w", ErrDocumentUpload, err)
	}
	return url, nil
}

// provision persists the account and its verification tokens, then sends
// both confirmation messages. When a step after the insert fails, the
// completed steps are undone so no unconfirmable account is left behind.
func (s *ProvisioningService) provision(ctx context.Context, span trace.Span, account models.Account) error {
	role := account.AccountRole()
	email := account.AccountEmail()

	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return &userError{kind: ErrDuplicateIdentity, msg: "email, mobile number or plate number already in use"}
		}
		return s.fail(ctx, span, role, "create account", err)
	}
	id := account.AccountID()
	span.SetAttributes(attribute.String("account.role", string(role)), attribute.Int64("account.id", int64(id)))

	var sg saga
	sg.push("create account", func(ctx context.Context, tx store.Store) error {
		return tx.Delete(ctx, role, id)
	})

	abort := func(step string, cause error) error {
		err := s.fail(ctx, span, role, step, cause)
		// The rollback must finish even if the client went away.
		cctx := context.WithoutCancel(ctx)
		if cerr := sg.compensate(cctx, s.store); cerr != nil {
			slog.ErrorContext(cctx, "signup rollback failed",
				"role", role, "account_id", id, "step", step, "error", cerr)
		}
		return err
	}

	emailToken, err := generateVerificationToken()
	if err != nil {
		return abort("generate email token", err)
	}
	mobileToken, err := generateVerificationToken()
	if err != nil {
		return abort("generate mobile token", err)
	}

	err = s.store.RunAtomic(ctx, func(tx store.Store) error {
		if err := tx.DeleteTokensFor(ctx, email); err != nil {
			return err
		}
		return tx.CreateTokens(ctx,
			models.VerificationToken{Token: emailToken, Channel: models.ChannelEmail, UserEmail: email},
			models.VerificationToken{Token: mobileToken, Channel: models.ChannelMobile, UserEmail: email},
		)
	})
	if err != nil {
		return abort("persist tokens", err)
	}
	sg.push("persist tokens", func(ctx context.Context, tx store.Store) error {
		return tx.DeleteTokensFor(ctx, email)
	})

	emailLink := notify.VerificationLink(s.cfg.BaseURL, role, models.ChannelEmail, emailToken)
	body, err := notify.EmailConfirmation(role, emailLink)
	if err != nil {
		return abort("render email", err)
	}
	if err := s.notifier.SendEmail(ctx, email, notify.EmailConfirmationSubject, body); err != nil {
		return abort("send email", err)
	}

	mobileLink := notify.VerificationLink(s.cfg.BaseURL, role, models.ChannelMobile, mobileToken)
	if err := s.notifier.SendSMS(ctx, account.AccountMobile(), notify.MobileConfirmation(mobileLink)); err != nil {
		return abort("send sms", err)
	}

	slog.InfoContext(ctx, "account provisioned", "role", role, "account_id", id)
	return nil
}

// fail logs an infrastructure failure and hides it behind
// ErrProvisioningFailed. The cause stays in the chain for error reporting.
func (s *ProvisioningService) fail(ctx context.Context, span trace.Span, role models.Role, step string, cause error) error {
	slog.ErrorContext(ctx, "signup step failed", "role", role, "step", step, "error", cause)
	span.RecordError(cause)
	span.SetStatus(codes.Error, step)
	return fmt.Errorf("%w: %s: %w", ErrProvisioningFailed, step, cause)
}
