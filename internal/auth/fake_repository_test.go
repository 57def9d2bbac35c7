package auth_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kopiteras/cafe/internal/account"
)

// memoryAccounts is an in-memory account.Repository with the same uniqueness
// and not-found semantics as the Postgres implementation.
type memoryAccounts struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*account.Account
	failErr error // when set, every call fails with it
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: map[int64]*account.Account{}}
}

func (m *memoryAccounts) Create(_ context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return account.ErrDuplicateEmail
		}
	}
	if a.Role == "" {
		a.Role = account.RoleUser
	}
	m.nextID++
	now := time.Now().UTC()
	a.ID = m.nextID
	a.CreatedAt, a.UpdatedAt, a.ImageUpdatedAt = now, now, now
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memoryAccounts) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

func (m *memoryAccounts) GetByID(_ context.Context, id int64) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryAccounts) List(_ context.Context) ([]account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]account.Account, 0, len(m.byID))
	for _, a := range m.byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryAccounts) UpdateRole(_ context.Context, id int64, role account.Role) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	a.Role = role
	cp := *a
	return &cp, nil
}

func (m *memoryAccounts) UpdateProfile(_ context.Context, email string, upd account.ProfileUpdate) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			a.Name = &upd.Name
			if upd.Image != nil {
				a.Image = upd.Image
				a.ImageUpdatedAt = time.Now().UTC()
			}
			cp := *a
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

func (m *memoryAccounts) CountAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}

func (m *memoryAccounts) CountByRole(_ context.Context, role account.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	n := 0
	for _, a := range m.byID {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

var errStoreDown = errors.New("connection refused")
