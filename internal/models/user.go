package models

import "time"

// User is the stored identity row. TotalIncome and TotalExpenses are
// denormalized caches refreshed on every ledger write; summaries are always
// computed from the entry tables instead of trusting them.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	TotalIncome   float64   `json:"total_income"`
	TotalExpenses float64   `json:"total_expenses"`
	ResetToken    *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// PublicUser is the view of a user returned by signup and login.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips credentials and aggregates from a user.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}
