package memory

import (
	"context"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/domain/repository"
)

type userRepository struct {
	store *Store
}

// NewUserRepository возвращает UserRepository поверх Store
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.byName[user.Username]; ok {
		return domain.ErrUsernameTaken
	}

	user.ID = r.store.nextID
	user.CreatedAt = r.store.now()
	r.store.nextID++

	stored := *user
	r.store.users[user.ID] = &stored
	r.store.byName[user.Username] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *user
	return &c, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *r.store.users[id]
	return &c, nil
}
