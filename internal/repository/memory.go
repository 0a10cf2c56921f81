package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/userauth/internal/models"
)

type memoryRepository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]models.User
	profiles map[uuid.UUID]models.Profile
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() UserRepository {
	return &memoryRepository{
		users:    make(map[uuid.UUID]models.User),
		profiles: make(map[uuid.UUID]models.Profile),
	}
}

func (r *memoryRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(user.Email, uuid.Nil) {
		return ErrDuplicate
	}
	user.EnsureID()
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.Profile = nil
	r.users[user.ID] = stored
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.PhoneNumber == phone })
}

func (r *memoryRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *models.User
	for _, user := range r.users {
		if !match(user) {
			continue
		}
		if found == nil || user.CreatedAt.Before(found.CreatedAt) {
			u := user
			found = &u
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *memoryRepository) FindWithProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if profile, ok := r.profiles[id]; ok {
		user.Profile = &profile
	}
	return user, nil
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id uuid.UUID, hash string, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.ResetVersion != expectedVersion {
		return ErrStaleVersion
	}
	user.PasswordHash = hash
	user.ResetVersion++
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *memoryRepository) UpdateAccount(_ context.Context, id uuid.UUID, update models.UserUpdate, profileUpdate models.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if update.Email.Set && r.emailTaken(update.Email.Value, id) {
		return ErrDuplicate
	}

	now := time.Now()
	if !update.Empty() {
		update.Apply(&user)
		user.UpdatedAt = now
		r.users[id] = user
	}
	if profileUpdate.Empty() {
		return nil
	}

	profile, ok := r.profiles[id]
	if !ok {
		profile = models.Profile{UserID: id}
		profile.EnsureID()
		profile.CreatedAt = now
	}
	profileUpdate.Apply(&profile)
	profile.UpdatedAt = now
	r.profiles[id] = profile
	return nil
}

func (r *memoryRepository) emailTaken(email string, except uuid.UUID) bool {
	for id, user := range r.users {
		if id != except && user.Email == email {
			return true
		}
	}
	return false
}
