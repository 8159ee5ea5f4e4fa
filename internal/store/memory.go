package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"USER_REGISTRATION_BACK-END/internal/models"
)

// Memory is an in-process Store for tests and local runs without a
// database. Transactions are serialised against each other and rolled back
// by restoring a snapshot taken when they start. They are not isolated from
// direct writes: a rollback also discards anything written outside the
// transaction while it ran.
type Memory struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data memoryData
}

type memoryData struct {
	users         map[int64]models.User
	profiles      map[int64]models.Profile
	addresses     map[int64]models.EmailAddress
	confirmations map[uuid.UUID]models.EmailConfirmation
	verifications map[uuid.UUID]models.Verification

	nextUserID    int64
	nextProfileID int64
	nextAddressID int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: memoryData{
		users:         map[int64]models.User{},
		profiles:      map[int64]models.Profile{},
		addresses:     map[int64]models.EmailAddress{},
		confirmations: map[uuid.UUID]models.EmailConfirmation{},
		verifications: map[uuid.UUID]models.Verification{},
	}}
}

func (d memoryData) clone() memoryData {
	out := d
	out.users = make(map[int64]models.User, len(d.users))
	for k, v := range d.users {
		out.users[k] = v
	}
	out.profiles = make(map[int64]models.Profile, len(d.profiles))
	for k, v := range d.profiles {
		out.profiles[k] = v
	}
	out.addresses = make(map[int64]models.EmailAddress, len(d.addresses))
	for k, v := range d.addresses {
		out.addresses[k] = v
	}
	out.confirmations = make(map[uuid.UUID]models.EmailConfirmation, len(d.confirmations))
	for k, v := range d.confirmations {
		out.confirmations[k] = v
	}
	out.verifications = make(map[uuid.UUID]models.Verification, len(d.verifications))
	for k, v := range d.verifications {
		out.verifications[k] = v
	}
	return out
}

func (m *Memory) WithTx(ctx context.Context, fn func(tx Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := m.data.clone()
	m.mu.RUnlock()

	if err := fn(memoryTx{m}); err != nil {
		m.mu.Lock()
		m.data = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// memoryTx is the Store handed to WithTx callbacks. Nested WithTx calls
// join the running transaction, as Postgres does.
type memoryTx struct{ *Memory }

func (t memoryTx) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

// ---------- users ----------

func (m *Memory) usernameTakenLocked(username string, exceptID int64) bool {
	for id, u := range m.data.users {
		if id != exceptID && strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

func (m *Memory) profileLinkedLocked(profileID *int64, exceptID int64) bool {
	if profileID == nil {
		return false
	}
	for id, u := range m.data.users {
		if id != exceptID && u.ProfileID != nil && *u.ProfileID == *profileID {
			return true
		}
	}
	return false
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usernameTakenLocked(u.Username, 0) {
		return ErrUsernameTaken
	}
	if m.profileLinkedLocked(u.ProfileID, 0) {
		return ErrProfileLinked
	}
	m.data.nextUserID++
	u.ID = m.data.nextUserID
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	m.data.users[u.ID] = *u
	return nil
}

func (m *Memory) UpdateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.data.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if m.usernameTakenLocked(u.Username, u.ID) {
		return ErrUsernameTaken
	}
	if m.profileLinkedLocked(u.ProfileID, u.ID) {
		return ErrProfileLinked
	}
	updated := *u
	updated.DateJoined = existing.DateJoined
	updated.PasswordHash = existing.PasswordHash
	updated.LastLogin = existing.LastLogin
	m.data.users[u.ID] = updated
	return nil
}

func (m *Memory) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return m.updateUserLocked(id, func(u *models.User) { u.PasswordHash = hash })
}

func (m *Memory) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return m.updateUserLocked(id, func(u *models.User) { u.LastLogin = &at })
}

func (m *Memory) updateUserLocked(id int64, apply func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.data.users[id]
	if !ok {
		return ErrNotFound
	}
	apply(&u)
	m.data.users[id] = u
	return nil
}

func (m *Memory) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.data.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *models.User
	for _, u := range m.data.users {
		if strings.EqualFold(u.Email, email) && (found == nil || u.ID < found.ID) {
			u := u
			found = &u
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *Memory) UsernameExists(ctx context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usernameTakenLocked(username, 0), nil
}

func (m *Memory) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.data.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	for _, a := range m.data.addresses {
		if strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) withProfileLocked(u models.User) models.UserWithProfile {
	out := models.UserWithProfile{User: u}
	if u.ProfileID != nil {
		if p, ok := m.data.profiles[*u.ProfileID]; ok {
			out.Profile = &p
		}
	}
	return out
}

func (m *Memory) GetUserWithProfile(ctx context.Context, id int64) (*models.UserWithProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := m.withProfileLocked(u)
	return &out, nil
}

func (m *Memory) ListUsers(ctx context.Context, order Ordering) ([]models.UserWithProfile, error) {
	if _, ok := orderColumns[order.Field]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, order.Field)
	}

	m.mu.RLock()
	users := make([]models.UserWithProfile, 0, len(m.data.users))
	for _, u := range m.data.users {
		users = append(users, m.withProfileLocked(u))
	}
	m.mu.RUnlock()

	key := func(u models.UserWithProfile) string {
		switch order.Field {
		case "username":
			return u.Username
		case "email":
			return u.Email
		case "first_name":
			return u.FirstName
		case "last_name":
			return u.LastName
		}
		return ""
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if ka, kb := key(a), key(b); ka != kb {
			if order.Desc {
				return ka > kb
			}
			return ka < kb
		}
		if order.Desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
	return users, nil
}

// ---------- user details ----------

func (m *Memory) CreateProfile(ctx context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data.nextProfileID++
	p.ID = m.data.nextProfileID
	m.data.profiles[p.ID] = *p
	return nil
}

func (m *Memory) UpdateProfile(ctx context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data.profiles[p.ID]; !ok {
		return ErrNotFound
	}
	m.data.profiles[p.ID] = *p
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.data.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// DeleteProfile removes the details row and clears the owning user's link,
// mirroring ON DELETE SET NULL.
func (m *Memory) DeleteProfile(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(m.data.profiles, id)
	for uid, u := range m.data.users {
		if u.ProfileID != nil && *u.ProfileID == id {
			u.ProfileID = nil
			m.data.users[uid] = u
		}
	}
	return nil
}

// ---------- e-mail addresses ----------

func (m *Memory) AddEmailAddress(ctx context.Context, a *models.EmailAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data.users[a.UserID]; !ok {
		return fmt.Errorf("add email address: unknown user %d", a.UserID)
	}
	m.data.nextAddressID++
	a.ID = m.data.nextAddressID
	m.data.addresses[a.ID] = *a
	return nil
}

func (m *Memory) PrimaryEmailAddress(ctx context.Context, userID int64) (*models.EmailAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *models.EmailAddress
	for _, a := range m.data.addresses {
		if a.UserID == userID && a.Primary && (found == nil || a.ID < found.ID) {
			a := a
			found = &a
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *Memory) VerifyEmailAddress(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.data.addresses[id]
	if !ok {
		return ErrNotFound
	}
	a.Verified = true
	m.data.addresses[id] = a
	return nil
}

func (m *Memory) CreateEmailConfirmation(ctx context.Context, c *models.EmailConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data.addresses[c.EmailAddressID]; !ok {
		return fmt.Errorf("create email confirmation: unknown address %d", c.EmailAddressID)
	}
	if c.Key == uuid.Nil {
		c.Key = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	stored := *c
	stored.Address = models.EmailAddress{}
	m.data.confirmations[c.Key] = stored
	return nil
}

func (m *Memory) GetEmailConfirmation(ctx context.Context, key uuid.UUID) (*models.EmailConfirmation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.data.confirmations[key]
	if !ok {
		return nil, ErrNotFound
	}
	a, ok := m.data.addresses[c.EmailAddressID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Address = a
	return &c, nil
}

func (m *Memory) MarkConfirmationSent(ctx context.Context, key uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.data.confirmations[key]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	c.SentAt = &now
	m.data.confirmations[key] = c
	return nil
}

// ---------- password reset verifications ----------

func (m *Memory) CreateVerification(ctx context.Context, v *models.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	m.data.verifications[v.ID] = *v
	return nil
}

func (m *Memory) latestVerificationLocked(match func(models.Verification) bool) (*models.Verification, error) {
	var found *models.Verification
	for _, v := range m.data.verifications {
		if match(v) && (found == nil || v.CreatedAt.After(found.CreatedAt)) {
			v := v
			found = &v
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *Memory) LatestVerification(ctx context.Context, userID int64, email string) (*models.Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.latestVerificationLocked(func(v models.Verification) bool {
		return v.UserID == userID && v.Email == email
	})
}

func (m *Memory) FindVerification(ctx context.Context, userID int64, email, code string) (*models.Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.latestVerificationLocked(func(v models.Verification) bool {
		return v.UserID == userID && v.Email == email && v.Code == code
	})
}

func (m *Memory) MarkVerificationUsed(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data.verifications[id]
	if !ok {
		return ErrNotFound
	}
	v.Used = true
	m.data.verifications[id] = v
	return nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)
