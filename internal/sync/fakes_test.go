package sync

import (
	"context"
	gosync "sync"

	"shopsync/internal/domain"
)

// In-memory repositories for exercising the reconciliation paths without a
// database.

type memCartRepo struct {
	mu   gosync.Mutex
	rows map[string]domain.CartItem
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{rows: map[string]domain.CartItem{}}
}

func (m *memCartRepo) Upsert(_ context.Context, ci *domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[ci.Key().String()] = *ci
	return nil
}

func (m *memCartRepo) FindByKey(_ context.Context, k domain.CartKey) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[k.String()]; ok {
		return &row, nil
	}
	return nil, nil
}

func (m *memCartRepo) ListByUser(_ context.Context, userID string) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CartItem
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memCartRepo) DeleteByKey(_ context.Context, k domain.CartKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, k.String())
	return nil
}

func (m *memCartRepo) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *memCartRepo) ListPending(_ context.Context, userID string) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CartItem
	for _, row := range m.rows {
		if row.UserID == userID && row.Pending {
			out = append(out, row)
		}
	}
	return out, nil
}

type memUserRepo struct {
	mu   gosync.Mutex
	rows map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{rows: map[string]domain.User{}}
}

func (m *memUserRepo) Upsert(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID] = *u
	return nil
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		return &row, nil
	}
	return nil, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email {
			u := row
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memUserRepo) ListPending(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, row := range m.rows {
		if row.Pending {
			out = append(out, row)
		}
	}
	return out, nil
}
