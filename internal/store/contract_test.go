package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
)

// runStoreContract checks the behaviour every Store implementation shares.
// open must return an empty store.
func runStoreContract(t *testing.T, open func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s Store)
	}{
		{"driver loads with vehicle", contractDriverLoadsWithVehicle},
		{"identity is shared across roles", contractIdentityAcrossRoles},
		{"plate numbers are unique", contractPlateUnique},
		{"delete releases vehicle and identity", contractDeleteReleases},
		{"update only raises flags", contractUpdateRaisesFlags},
		{"atomic run rolls back on error", contractRunAtomicRollsBack},
		{"tokens are channel scoped", contractTokensChannelScoped},
		{"token is deleted once under contention", contractDeleteTokenOnce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func newDriver(email, mobile, plate string) *models.Driver {
	return &models.Driver{
		FirstName: "Omar", LastName: "Farouk",
		Email: email, Mobile: mobile, Password: "hash",
		NationalIDURL: "https://images.example.com/id.png", DriveLicenseURL: "https://images.example.com/license.png",
		Vehicle: &models.Vehicle{Model: "Corolla", Year: 2019, Color: "White", PlateNum: plate},
	}
}

func newCustomer(email, mobile string) *models.Customer {
	return &models.Customer{FirstName: "Amira", LastName: "Hassan", Email: email, Mobile: mobile, Password: "hash"}
}

func contractDriverLoadsWithVehicle(t *testing.T, s Store) {
	ctx := context.Background()
	d := newDriver("d@x.com", "+201000000002", "ABC-1")
	if err := s.Create(ctx, d); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	if d.ID == 0 || d.Vehicle.DriverID != d.ID {
		t.Fatalf("ids not assigned: driver=%d vehicle.driver=%d", d.ID, d.Vehicle.DriverID)
	}

	got, err := s.FindByID(ctx, models.RoleDriver, d.ID)
	if err != nil {
		t.Fatalf("find driver: %v", err)
	}
	if v := got.(*models.Driver).Vehicle; v == nil || v.PlateNum != "ABC-1" {
		t.Fatalf("vehicle not loaded: %+v", v)
	}
	if _, err := s.FindByMobile(ctx, models.RoleDriver, "+201000000002"); err != nil {
		t.Fatalf("find by mobile: %v", err)
	}
	if _, err := s.FindByID(ctx, models.RoleCustomer, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("driver id visible as customer: %v", err)
	}
}

func contractIdentityAcrossRoles(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.Create(ctx, newCustomer("a@x.com", "+201000000001")); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name    string
		account models.Account
	}{
		{"driver with customer email", newDriver("a@x.com", "+201000000009", "ABC-9")},
		{"driver with customer mobile", newDriver("b@x.com", "+201000000001", "ABC-8")},
		{"customer with same email", newCustomer("a@x.com", "+201000000008")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Create(ctx, tt.account); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
		})
	}
	if _, err := s.FindByEmail(ctx, models.RoleDriver, "b@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected driver was stored: %v", err)
	}

	// Admins live in their own identity space.
	if err := s.Create(ctx, &models.Admin{Name: "Root", Email: "a@x.com", Password: "hash"}); err != nil {
		t.Fatalf("admin with customer email: %v", err)
	}
	if err := s.Create(ctx, &models.Admin{Name: "Other", Email: "a@x.com", Password: "hash"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second admin, got %v", err)
	}
}

func contractPlateUnique(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.Create(ctx, newDriver("d@x.com", "+201000000002", "ABC-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, newDriver("e@x.com", "+201000000003", "ABC-1")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// The failed insert must not keep the driver row or its identity claim.
	if _, err := s.FindByEmail(ctx, models.RoleDriver, "e@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("driver with taken plate was stored: %v", err)
	}
	if err := s.Create(ctx, newCustomer("e@x.com", "+201000000003")); err != nil {
		t.Fatalf("identity kept after failed insert: %v", err)
	}
}

func contractDeleteReleases(t *testing.T, s Store) {
	ctx := context.Background()
	d := newDriver("d@x.com", "+201000000002", "ABC-1")
	if err := s.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, models.RoleDriver, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.FindByEmail(ctx, models.RoleDriver, "d@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Create(ctx, newDriver("other@x.com", "+201000000007", "ABC-1")); err != nil {
		t.Fatalf("plate not released: %v", err)
	}
	if err := s.Create(ctx, newCustomer("d@x.com", "+201000000002")); err != nil {
		t.Fatalf("identity not released: %v", err)
	}
	if err := s.Delete(ctx, models.RoleDriver, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func contractUpdateRaisesFlags(t *testing.T, s Store) {
	ctx := context.Background()
	c := newCustomer("c@x.com", "+201000000001")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Update(ctx, models.RoleCustomer, c.ID, PatchFor(models.ChannelEmail)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Update(ctx, models.RoleCustomer, c.ID, AccountPatch{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
	got, err := s.FindByID(ctx, models.RoleCustomer, c.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.EmailVerified() || got.MobileVerified() {
		t.Fatalf("unexpected flags email=%v mobile=%v", got.EmailVerified(), got.MobileVerified())
	}
	if err := s.Update(ctx, models.RoleCustomer, 99, PatchFor(models.ChannelMobile)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Update(ctx, models.RoleAdmin, c.ID, PatchFor(models.ChannelEmail)); err == nil {
		t.Fatal("admin accounts have no confirmation flags")
	}
}

func contractRunAtomicRollsBack(t *testing.T, s Store) {
	ctx := context.Background()
	c := newCustomer("c@x.com", "+201000000001")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateTokens(ctx, models.VerificationToken{Token: "t1", Channel: models.ChannelEmail, UserEmail: c.Email}); err != nil {
		t.Fatalf("create tokens: %v", err)
	}

	boom := errors.New("boom")
	err := s.RunAtomic(ctx, func(tx Store) error {
		if err := tx.Update(ctx, models.RoleCustomer, c.ID, PatchFor(models.ChannelEmail)); err != nil {
			return err
		}
		if err := tx.DeleteToken(ctx, models.ChannelEmail, "t1"); err != nil {
			return err
		}
		if err := tx.Create(ctx, newCustomer("new@x.com", "+201000000005")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := s.FindByID(ctx, models.RoleCustomer, c.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.EmailVerified() {
		t.Fatal("flag update survived a failed atomic run")
	}
	if _, err := s.FindToken(ctx, models.ChannelEmail, "t1"); err != nil {
		t.Fatalf("token delete survived a failed atomic run: %v", err)
	}
	if _, err := s.FindByEmail(ctx, models.RoleCustomer, "new@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("insert survived a failed atomic run: %v", err)
	}
	if err := s.Create(ctx, newCustomer("new@x.com", "+201000000005")); err != nil {
		t.Fatalf("identity claim survived a failed atomic run: %v", err)
	}
}

func contractTokensChannelScoped(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateTokens(ctx,
		models.VerificationToken{Token: "e1", Channel: models.ChannelEmail, UserEmail: "a@x.com"},
		models.VerificationToken{Token: "m1", Channel: models.ChannelMobile, UserEmail: "a@x.com"},
	); err != nil {
		t.Fatalf("create tokens: %v", err)
	}
	if err := s.CreateTokens(ctx, models.VerificationToken{Token: "e1", Channel: models.ChannelEmail, UserEmail: "b@x.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused token, got %v", err)
	}
	if _, err := s.FindToken(ctx, models.ChannelMobile, "e1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("email token visible on mobile channel: %v", err)
	}
	if err := s.DeleteToken(ctx, models.ChannelEmail, "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("mobile token deleted through email channel: %v", err)
	}
	if err := s.DeleteTokensFor(ctx, "a@x.com"); err != nil {
		t.Fatalf("delete tokens: %v", err)
	}
	for _, tok := range []struct {
		channel models.Channel
		value   string
	}{{models.ChannelEmail, "e1"}, {models.ChannelMobile, "m1"}} {
		if _, err := s.FindToken(ctx, tok.channel, tok.value); !errors.Is(err, ErrNotFound) {
			t.Fatalf("token %s survived DeleteTokensFor: %v", tok.value, err)
		}
	}
}

func contractDeleteTokenOnce(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateTokens(ctx, models.VerificationToken{Token: "t1", Channel: models.ChannelEmail, UserEmail: "a@x.com"}); err != nil {
		t.Fatalf("create tokens: %v", err)
	}

	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		deleted   int
		notFound  int
		failures []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.DeleteToken(ctx, models.ChannelEmail, "t1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				deleted++
			case errors.Is(err, ErrNotFound):
				notFound++
			default:
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("unexpected errors: %v", failures)
	}
	if deleted != 1 || notFound != attempts-1 {
		t.Fatalf("expected exactly one delete, got %d deleted and %d not found", deleted, notFound)
	}
}
