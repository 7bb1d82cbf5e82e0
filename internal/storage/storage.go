package storage

import (
	"context"
	"errors"

	"budgetbuddy/internal/models"
)

// ErrNotFound indicates a record does not exist or is not owned by the
// caller; the two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations for identities and credentials.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	// SetResetToken persists token on the user row, replacing any prior
	// outstanding token. At most one reset token is live per user.
	SetResetToken(ctx context.Context, userID int64, token string) error
	// FindUserByIDAndResetToken matches the persisted token byte-for-byte;
	// a cleared or different token yields ErrNotFound.
	FindUserByIDAndResetToken(ctx context.Context, userID int64, token string) (models.User, error)
	// UpdatePassword stores the new hash and clears the persisted reset
	// token in the same statement, making reset tokens single-use.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// LedgerStore captures persistence operations for income/expense entries.
// Every mutation refreshes the owner's cached aggregate atomically with the
// write itself; reads that need authoritative totals use SumEntries.
type LedgerStore interface {
	InsertEntry(ctx context.Context, kind models.Kind, userID int64, source string, amount float64) (models.Entry, error)
	ListEntries(ctx context.Context, kind models.Kind, userID int64) ([]models.Entry, error)
	UpdateEntry(ctx context.Context, kind models.Kind, userID, id int64, source *string, amount *float64) error
	DeleteEntry(ctx context.Context, kind models.Kind, userID, id int64) error
	SumEntries(ctx context.Context, kind models.Kind, userID int64) (float64, error)
}

// Store is the full persistence surface the server is wired with.
type Store interface {
	UserStore
	LedgerStore
}
