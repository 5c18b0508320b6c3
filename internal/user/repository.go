package user

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrMissingFields   = errors.New("name, email, and phone are required")
	ErrInvalidReferral = errors.New("invalid referral code")
	ErrAlreadyPaid     = errors.New("email already registered and paid")
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByRefCode(ctx context.Context, code string) (User, error)
	Create(ctx context.Context, changes Changes) (User, error)
	Update(ctx context.Context, id string, changes Changes) (User, error)
}

// InMemoryRepository keeps users in process memory. It backs local runs
// without Airtable credentials and the package tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
	}
	repo.users = append(repo.users, seed...)
	return repo
}

func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findFirst(func(u User) bool { return u.Email == email })
}

func (r *InMemoryRepository) FindByRefCode(ctx context.Context, code string) (User, error) {
	return r.findFirst(func(u User) bool { return u.RefCode == code })
}

// GetByID and List inspect the memory store; they are not part of Repository.
func (r *InMemoryRepository) GetByID(id string) (User, error) {
	return r.findFirst(func(u User) bool { return u.ID == id })
}

func (r *InMemoryRepository) List() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, len(r.users))
	copy(users, r.users)
	return users
}

func (r *InMemoryRepository) Create(ctx context.Context, changes Changes) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := applyChanges(User{}, changes)
	user.ID = r.newIDLocked()

	r.users = append(r.users, user)
	return user, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id string, changes Changes) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID == id {
			r.users[i] = applyChanges(user, changes)
			return r.users[i], nil
		}
	}

	return User{}, ErrNotFound
}

// newIDLocked skips ids already taken by seeded users.
func (r *InMemoryRepository) newIDLocked() string {
	for {
		id := "rec" + strconv.Itoa(r.nextID)
		r.nextID++
		taken := false
		for _, user := range r.users {
			if user.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

func (r *InMemoryRepository) findFirst(match func(User) bool) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if match(user) {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

// applyChanges has the same semantics as an Airtable PATCH: only the
// columns present in changes are written.
func applyChanges(user User, changes Changes) User {
	if changes.Name != "" {
		user.Name = changes.Name
	}
	if changes.Email != "" {
		user.Email = changes.Email
	}
	if changes.Phone != "" {
		user.Phone = changes.Phone
	}
	if changes.Status != "" {
		user.Status = changes.Status
	}
	if changes.ReferredBy != nil {
		user.ReferredBy = append([]string(nil), changes.ReferredBy...)
	}
	return user
}
