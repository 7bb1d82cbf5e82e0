package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budgetbuddy/internal/models"
	"budgetbuddy/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage interfaces at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users and ledger entries.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			total_income NUMERIC(14,2) NOT NULL DEFAULT 0,
			total_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
			reset_token TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS incomes (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS incomes_user_id_idx ON incomes (user_id);`,
		`CREATE INDEX IF NOT EXISTS expenses_user_id_idx ON expenses (user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// entryTable maps a ledger kind to its table and aggregate column. Both
// values are compile-time constants, never caller input, so interpolating
// them into SQL is safe.
func entryTable(kind models.Kind) (table, aggregate string) {
	if kind == models.KindExpense {
		return "expenses", "total_expenses"
	}
	return "incomes", "total_income"
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (username, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id, username, email, password_hash, total_income, total_expenses, reset_token, created_at;
	`
	row := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

const userColumns = `id, username, email, password_hash, total_income, total_expenses, reset_token, created_at`

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	return scanUser(row)
}

// FindUserByUsername fetches a user by username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1;`, username)
	return scanUser(row)
}

// FindUserByEmail fetches a user by email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	return scanUser(row)
}

// SetResetToken stores token on the user row, replacing any prior token.
func (s *Store) SetResetToken(ctx context.Context, userID int64, token string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET reset_token = $1 WHERE id = $2;`, token, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// FindUserByIDAndResetToken fetches a user only when the persisted reset
// token matches exactly.
func (s *Store) FindUserByIDAndResetToken(ctx context.Context, userID int64, token string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND reset_token = $2;`, userID, token)
	return scanUser(row)
}

// UpdatePassword stores the new hash and clears the reset token together.
func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $1, reset_token = NULL WHERE id = $2;`, passwordHash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// InsertEntry adds a ledger entry and refreshes the owner's cached
// aggregate in the same transaction.
func (s *Store) InsertEntry(ctx context.Context, kind models.Kind, userID int64, source string, amount float64) (models.Entry, error) {
	table, _ := entryTable(kind)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
	INSERT INTO %s (user_id, source, amount)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, source, amount, created_at;
	`, table)

	var e models.Entry
	row := tx.QueryRow(ctx, query, userID, source, amount)
	if err := row.Scan(&e.ID, &e.UserID, &e.Source, &e.Amount, &e.CreatedAt); err != nil {
		return models.Entry{}, err
	}

	if err := refreshAggregate(ctx, tx, kind, userID); err != nil {
		return models.Entry{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Entry{}, err
	}
	return e, nil
}

// ListEntries returns a user's entries, most recent first.
func (s *Store) ListEntries(ctx context.Context, kind models.Kind, userID int64) ([]models.Entry, error) {
	table, _ := entryTable(kind)
	query := fmt.Sprintf(`
	SELECT id, user_id, source, amount, created_at
	FROM %s WHERE user_id = $1
	ORDER BY created_at DESC, id DESC;
	`, table)

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Source, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateEntry applies the provided fields to the row matched by (id, user_id).
// A row owned by another user is reported exactly like a missing one.
func (s *Store) UpdateEntry(ctx context.Context, kind models.Kind, userID, id int64, source *string, amount *float64) error {
	table, _ := entryTable(kind)

	var sets []string
	var args []any
	if source != nil {
		args = append(args, *source)
		sets = append(sets, fmt.Sprintf("source = $%d", len(args)))
	}
	if amount != nil {
		args = append(args, *amount)
		sets = append(sets, fmt.Sprintf("amount = $%d", len(args)))
	}
	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND user_id = $%d;`,
		table, strings.Join(sets, ", "), len(args)-1, len(args))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	if err := refreshAggregate(ctx, tx, kind, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteEntry removes the row matched by (id, user_id).
func (s *Store) DeleteEntry(ctx context.Context, kind models.Kind, userID, id int64) error {
	table, _ := entryTable(kind)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2;`, table)
	tag, err := tx.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	if err := refreshAggregate(ctx, tx, kind, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SumEntries computes a fresh total for the user's entries of this kind.
func (s *Store) SumEntries(ctx context.Context, kind models.Kind, userID int64) (float64, error) {
	table, _ := entryTable(kind)
	query := fmt.Sprintf(`SELECT COALESCE(SUM(amount), 0) FROM %s WHERE user_id = $1;`, table)

	var total float64
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// refreshAggregate recomputes the cached total for (userID, kind) inside
// the mutation's own transaction, so the cache can never drift from the
// rows it summarizes.
func refreshAggregate(ctx context.Context, tx pgx.Tx, kind models.Kind, userID int64) error {
	table, aggregate := entryTable(kind)
	query := fmt.Sprintf(`
	UPDATE users SET %s = (SELECT COALESCE(SUM(amount), 0) FROM %s WHERE user_id = $1)
	WHERE id = $1;
	`, aggregate, table)
	_, err := tx.Exec(ctx, query, userID)
	return err
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.TotalIncome, &user.TotalExpenses, &user.ResetToken, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
