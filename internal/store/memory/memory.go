// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"minitwitql/internal/models"
	"minitwitql/internal/store"
)

// Store keeps users and messages in maps guarded by one lock.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	messages map[string]models.Message
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		messages: make(map[string]models.Message),
	}
}

var _ store.Store = (*Store)(nil)

// Users returns the users collection.
func (s *Store) Users() store.Users { return userStore{s} }

// Messages returns the messages collection.
func (s *Store) Messages() store.Messages { return messageStore{s} }

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (s *Store) Close() error { return nil }

type userStore struct{ s *Store }

func (u userStore) Create(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.users[user.ID] = user
	return nil
}

func (u userStore) ByID(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

func (u userStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

type messageStore struct{ s *Store }

func (m messageStore) Create(ctx context.Context, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.messages[msg.ID] = msg
	return nil
}

func (m messageStore) ByID(ctx context.Context, id string) (models.Message, error) {
	if err := ctx.Err(); err != nil {
		return models.Message{}, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	msg, ok := m.s.messages[id]
	if !ok {
		return models.Message{}, store.ErrNotFound
	}
	return msg, nil
}

func (m messageStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.messages[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.s.messages, id)
	return nil
}

func (m messageStore) List(ctx context.Context, q store.Query) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	out := make([]models.Message, 0, len(m.s.messages))
	for _, msg := range m.s.messages {
		if q.UserID != "" && msg.UserID != q.UserID {
			continue
		}
		if q.After != "" && msg.Date <= q.After {
			continue
		}
		out = append(out, msg)
	}
	m.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].ID < out[j].ID
		}
		return out[i].Date < out[j].Date
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
