package service

import (
	"context"
	"sync"

	"catbox/internal/model"
	"catbox/internal/repository"
)

// memUsers is an in-memory repository.UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]model.User{}}
}

func (m *memUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return nil, repository.ErrDuplicate
	}
	m.users[u.Username] = *u
	out := *u
	return &out, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// memFiles is an in-memory repository.FileRepository keeping insertion order.
type memFiles struct {
	mu    sync.Mutex
	files []model.FileRecord
}

func (m *memFiles) Create(_ context.Context, f *model.FileRecord) (*model.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.files {
		if x.ID == f.ID || x.StoredName == f.StoredName {
			return nil, repository.ErrDuplicate
		}
	}
	m.files = append(m.files, *f)
	out := *f
	return &out, nil
}

func (m *memFiles) find(match func(model.FileRecord) bool) (*model.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.files {
		if match(x) {
			out := x
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memFiles) FindByID(_ context.Context, id string) (*model.FileRecord, error) {
	return m.find(func(f model.FileRecord) bool { return f.ID == id })
}

func (m *memFiles) FindByStoredName(_ context.Context, name string) (*model.FileRecord, error) {
	return m.find(func(f model.FileRecord) bool { return f.StoredName == name })
}

func (m *memFiles) ListByOwner(_ context.Context, ownerID string) ([]model.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.FileRecord
	for _, x := range m.files {
		if x.OwnerID == ownerID {
			out = append(out, x)
		}
	}
	return out, nil
}

func (m *memFiles) Delete(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.files {
		if x.ID == id && x.OwnerID == ownerID {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
