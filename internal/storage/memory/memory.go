// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"budgetbuddy/internal/models"
	"budgetbuddy/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var _ storage.Store = (*Store)(nil)

// Store keeps all state behind a single mutex. Mutations recompute the
// owner's cached aggregate under the same lock, mirroring the transactional
// refresh the Postgres store performs.
type Store struct {
	mu      sync.Mutex
	users   []models.User
	entries map[models.Kind][]models.Entry

	userIDCounter  int64
	entryIDCounter int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: map[models.Kind][]models.Entry{},
	}
}

// CreateUser inserts a user, enforcing username and email uniqueness.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}

	s.userIDCounter++
	user.ID = s.userIDCounter
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, user)
	return user, nil
}

// FindUserByID fetches a user by id.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(func(u models.User) bool { return u.ID == id })
}

// FindUserByUsername fetches a user by username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

// FindUserByEmail fetches a user by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

// SetResetToken replaces any outstanding reset token on the user row.
func (s *Store) SetResetToken(ctx context.Context, userID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == userID {
			t := token
			s.users[i].ResetToken = &t
			return nil
		}
	}
	return storage.ErrNotFound
}

// FindUserByIDAndResetToken matches the persisted token exactly.
func (s *Store) FindUserByIDAndResetToken(ctx context.Context, userID int64, token string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(func(u models.User) bool {
		return u.ID == userID && u.ResetToken != nil && *u.ResetToken == token
	})
}

// UpdatePassword stores the new hash and clears the reset token.
func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].PasswordHash = passwordHash
			s.users[i].ResetToken = nil
			return nil
		}
	}
	return storage.ErrNotFound
}

// InsertEntry adds an entry and refreshes the cached aggregate.
func (s *Store) InsertEntry(ctx context.Context, kind models.Kind, userID int64, source string, amount float64) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entryIDCounter++
	e := models.Entry{
		ID:        s.entryIDCounter,
		UserID:    userID,
		Source:    source,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	s.entries[kind] = append(s.entries[kind], e)
	s.refreshAggregate(kind, userID)
	return e, nil
}

// ListEntries returns a user's entries, most recent first.
func (s *Store) ListEntries(ctx context.Context, kind models.Kind, userID int64) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.Entry
	for _, e := range s.entries[kind] {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// UpdateEntry applies the provided fields to the row matched by (id, userID).
func (s *Store) UpdateEntry(ctx context.Context, kind models.Kind, userID, id int64, source *string, amount *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.entries[kind]
	for i := range items {
		if items[i].ID == id && items[i].UserID == userID {
			if source != nil {
				items[i].Source = *source
			}
			if amount != nil {
				items[i].Amount = *amount
			}
			s.refreshAggregate(kind, userID)
			return nil
		}
	}
	return storage.ErrNotFound
}

// DeleteEntry removes the row matched by (id, userID).
func (s *Store) DeleteEntry(ctx context.Context, kind models.Kind, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.entries[kind]
	for i := range items {
		if items[i].ID == id && items[i].UserID == userID {
			s.entries[kind] = append(items[:i], items[i+1:]...)
			s.refreshAggregate(kind, userID)
			return nil
		}
	}
	return storage.ErrNotFound
}

// SumEntries computes a fresh total for the user's entries of this kind.
func (s *Store) SumEntries(ctx context.Context, kind models.Kind, userID int64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sum(kind, userID), nil
}

// CachedAggregates exposes the cached user columns so tests can check that
// mutations keep them consistent with the entry rows.
func (s *Store) CachedAggregates(userID int64) (income, expenses float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == userID {
			return u.TotalIncome, u.TotalExpenses, true
		}
	}
	return 0, 0, false
}

func (s *Store) findUser(match func(models.User) bool) (models.User, error) {
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) sum(kind models.Kind, userID int64) float64 {
	var total float64
	for _, e := range s.entries[kind] {
		if e.UserID == userID {
			total += e.Amount
		}
	}
	return total
}

// refreshAggregate must be called with the lock held.
func (s *Store) refreshAggregate(kind models.Kind, userID int64) {
	total := s.sum(kind, userID)
	for i := range s.users {
		if s.users[i].ID == userID {
			if kind == models.KindExpense {
				s.users[i].TotalExpenses = total
			} else {
				s.users[i].TotalIncome = total
			}
			return
		}
	}
}
