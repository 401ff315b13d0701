package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
)

// MemoryStore is an in-process Store for local development and tests.
// RunAtomic holds the store lock for the whole callback and restores a
// snapshot when the callback fails.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

type identityOwner struct {
	role models.Role
	id   uint
}

type memoryData struct {
	seq        map[models.Role]uint
	vehicleSeq uint
	customers  map[uint]models.Customer
	drivers    map[uint]models.Driver
	admins     map[uint]models.Admin
	identities map[string]identityOwner
	plates     map[string]uint
	tokens     map[string]models.VerificationToken
}

func newMemoryData() *memoryData {
	return &memoryData{
		seq:        make(map[models.Role]uint),
		customers:  make(map[uint]models.Customer),
		drivers:    make(map[uint]models.Driver),
		admins:     make(map[uint]models.Admin),
		identities: make(map[string]identityOwner),
		plates:     make(map[string]uint),
		tokens:     make(map[string]models.VerificationToken),
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	c.vehicleSeq = d.vehicleSeq
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.drivers {
		c.drivers[k] = copyDriver(v)
	}
	for k, v := range d.admins {
		c.admins[k] = v
	}
	for k, v := range d.identities {
		c.identities[k] = v
	}
	for k, v := range d.plates {
		c.plates[k] = v
	}
	for k, v := range d.tokens {
		c.tokens[k] = v
	}
	return c
}

func copyDriver(d models.Driver) models.Driver {
	if d.Vehicle != nil {
		v := *d.Vehicle
		d.Vehicle = &v
	}
	return d
}

func emailKey(email string) string   { return "email:" + email }
func mobileKey(mobile string) string { return "mobile:" + mobile }

func (s *MemoryStore) FindByEmail(ctx context.Context, role models.Role, email string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.FindByEmail(ctx, role, email)
}

func (s *MemoryStore) FindByMobile(ctx context.Context, role models.Role, mobile string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.FindByMobile(ctx, role, mobile)
}

func (s *MemoryStore) FindByID(ctx context.Context, role models.Role, id uint) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.FindByID(ctx, role, id)
}

func (s *MemoryStore) Create(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.Create(ctx, account)
}

func (s *MemoryStore) Update(ctx context.Context, role models.Role, id uint, patch AccountPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.Update(ctx, role, id, patch)
}

func (s *MemoryStore) Delete(ctx context.Context, role models.Role, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.Delete(ctx, role, id)
}

func (s *MemoryStore) CreateTokens(ctx context.Context, tokens ...models.VerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.CreateTokens(ctx, tokens...)
}

func (s *MemoryStore) FindToken(ctx context.Context, channel models.Channel, value string) (models.VerificationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.FindToken(ctx, channel, value)
}

func (s *MemoryStore) DeleteToken(ctx context.Context, channel models.Channel, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.DeleteToken(ctx, channel, value)
}

func (s *MemoryStore) DeleteTokensFor(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.DeleteTokensFor(ctx, email)
}

func (s *MemoryStore) RunAtomic(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryTx{s.data}.RunAtomic(ctx, fn)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// TokensFor lists the live tokens issued for an email, ordered by channel.
func (s *MemoryStore) TokensFor(email string) []models.VerificationToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.VerificationToken
	for _, t := range s.data.tokens {
		if t.UserEmail == email {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// Count returns the number of accounts of a role.
func (s *MemoryStore) Count(role models.Role) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch role {
	case models.RoleCustomer:
		return len(s.data.customers)
	case models.RoleDriver:
		return len(s.data.drivers)
	case models.RoleAdmin:
		return len(s.data.admins)
	}
	return 0
}

// memoryTx operates on the data without locking; the caller holds the lock.
type memoryTx struct {
	d *memoryData
}

func (t memoryTx) FindByEmail(_ context.Context, role models.Role, email string) (models.Account, error) {
	switch role {
	case models.RoleCustomer:
		for _, c := range t.d.customers {
			if c.Email == email {
				return &c, nil
			}
		}
	case models.RoleDriver:
		for _, d := range t.d.drivers {
			if d.Email == email {
				d = copyDriver(d)
				return &d, nil
			}
		}
	case models.RoleAdmin:
		for _, a := range t.d.admins {
			if a.Email == email {
				return &a, nil
			}
		}
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return nil, ErrNotFound
}

func (t memoryTx) FindByMobile(_ context.Context, role models.Role, mobile string) (models.Account, error) {
	switch role {
	case models.RoleCustomer:
		for _, c := range t.d.customers {
			if c.Mobile == mobile {
				return &c, nil
			}
		}
	case models.RoleDriver:
		for _, d := range t.d.drivers {
			if d.Mobile == mobile {
				d = copyDriver(d)
				return &d, nil
			}
		}
	case models.RoleAdmin:
		// admins have no mobile
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return nil, ErrNotFound
}

func (t memoryTx) FindByID(_ context.Context, role models.Role, id uint) (models.Account, error) {
	switch role {
	case models.RoleCustomer:
		if c, ok := t.d.customers[id]; ok {
			return &c, nil
		}
	case models.RoleDriver:
		if d, ok := t.d.drivers[id]; ok {
			d = copyDriver(d)
			return &d, nil
		}
	case models.RoleAdmin:
		if a, ok := t.d.admins[id]; ok {
			return &a, nil
		}
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return nil, ErrNotFound
}

func (t memoryTx) claimIdentity(role models.Role, id uint, email, mobile string) error {
	if _, taken := t.d.identities[emailKey(email)]; taken {
		return fmt.Errorf("%w: email", ErrDuplicate)
	}
	if _, taken := t.d.identities[mobileKey(mobile)]; taken {
		return fmt.Errorf("%w: mobile", ErrDuplicate)
	}
	owner := identityOwner{role: role, id: id}
	t.d.identities[emailKey(email)] = owner
	t.d.identities[mobileKey(mobile)] = owner
	return nil
}

func (t memoryTx) releaseIdentity(role models.Role, id uint) {
	for k, owner := range t.d.identities {
		if owner.role == role && owner.id == id {
			delete(t.d.identities, k)
		}
	}
}

func (t memoryTx) Create(_ context.Context, account models.Account) error {
	now := time.Now().UTC()
	switch a := account.(type) {
	case *models.Customer:
		id := t.d.seq[models.RoleCustomer] + 1
		if err := t.claimIdentity(models.RoleCustomer, id, a.Email, a.Mobile); err != nil {
			return err
		}
		t.d.seq[models.RoleCustomer] = id
		a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
		t.d.customers[id] = *a
	case *models.Driver:
		if a.Vehicle != nil {
			if _, taken := t.d.plates[a.Vehicle.PlateNum]; taken {
				return fmt.Errorf("%w: plate number", ErrDuplicate)
			}
		}
		id := t.d.seq[models.RoleDriver] + 1
		if err := t.claimIdentity(models.RoleDriver, id, a.Email, a.Mobile); err != nil {
			return err
		}
		t.d.seq[models.RoleDriver] = id
		a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
		if a.Vehicle != nil {
			t.d.vehicleSeq++
			a.Vehicle.ID, a.Vehicle.DriverID, a.Vehicle.CreatedAt = t.d.vehicleSeq, id, now
			t.d.plates[a.Vehicle.PlateNum] = id
		}
		t.d.drivers[id] = copyDriver(*a)
	case *models.Admin:
		for _, existing := range t.d.admins {
			if existing.Email == a.Email {
				return fmt.Errorf("%w: email", ErrDuplicate)
			}
		}
		id := t.d.seq[models.RoleAdmin] + 1
		t.d.seq[models.RoleAdmin] = id
		a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
		t.d.admins[id] = *a
	default:
		return fmt.Errorf("unsupported account type %T", account)
	}
	return nil
}

func (t memoryTx) Update(_ context.Context, role models.Role, id uint, patch AccountPatch) error {
	if patch.empty() {
		return nil
	}
	now := time.Now().UTC()
	switch role {
	case models.RoleCustomer:
		c, ok := t.d.customers[id]
		if !ok {
			return ErrNotFound
		}
		c.EmailConfirmed = c.EmailConfirmed || patch.ConfirmEmail
		c.MobileConfirmed = c.MobileConfirmed || patch.ConfirmMobile
		c.UpdatedAt = now
		t.d.customers[id] = c
	case models.RoleDriver:
		d, ok := t.d.drivers[id]
		if !ok {
			return ErrNotFound
		}
		d.EmailConfirmed = d.EmailConfirmed || patch.ConfirmEmail
		d.MobileConfirmed = d.MobileConfirmed || patch.ConfirmMobile
		d.UpdatedAt = now
		t.d.drivers[id] = d
	default:
		return fmt.Errorf("%s accounts have no confirmation state", role)
	}
	return nil
}

func (t memoryTx) Delete(_ context.Context, role models.Role, id uint) error {
	switch role {
	case models.RoleCustomer:
		if _, ok := t.d.customers[id]; !ok {
			return ErrNotFound
		}
		delete(t.d.customers, id)
	case models.RoleDriver:
		d, ok := t.d.drivers[id]
		if !ok {
			return ErrNotFound
		}
		if d.Vehicle != nil {
			delete(t.d.plates, d.Vehicle.PlateNum)
		}
		delete(t.d.drivers, id)
	case models.RoleAdmin:
		if _, ok := t.d.admins[id]; !ok {
			return ErrNotFound
		}
		delete(t.d.admins, id)
		return nil
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	t.releaseIdentity(role, id)
	return nil
}

func (t memoryTx) CreateTokens(_ context.Context, tokens ...models.VerificationToken) error {
	for _, tok := range tokens {
		if _, exists := t.d.tokens[tok.Token]; exists {
			return fmt.Errorf("%w: token", ErrDuplicate)
		}
	}
	now := time.Now().UTC()
	for _, tok := range tokens {
		tok.CreatedAt = now
		t.d.tokens[tok.Token] = tok
	}
	return nil
}

func (t memoryTx) FindToken(_ context.Context, channel models.Channel, value string) (models.VerificationToken, error) {
	tok, ok := t.d.tokens[value]
	if !ok || tok.Channel != channel {
		return models.VerificationToken{}, ErrNotFound
	}
	return tok, nil
}

func (t memoryTx) DeleteToken(_ context.Context, channel models.Channel, value string) error {
	tok, ok := t.d.tokens[value]
	if !ok || tok.Channel != channel {
		return ErrNotFound
	}
	delete(t.d.tokens, value)
	return nil
}

func (t memoryTx) DeleteTokensFor(_ context.Context, email string) error {
	for k, tok := range t.d.tokens {
		if tok.UserEmail == email {
			delete(t.d.tokens, k)
		}
	}
	return nil
}

func (t memoryTx) RunAtomic(_ context.Context, fn func(tx Store) error) error {
	snapshot := t.d.clone()
	if err := fn(t); err != nil {
		*t.d = *snapshot
		return err
	}
	return nil
}

func (t memoryTx) Ping(context.Context) error { return nil }
