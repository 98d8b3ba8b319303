package account

import (
	"time"

	"github.com/google/uuid"
)

// Providers an account can be created through.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

type Account struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     *string    `db:"password_hash" json:"-"`
	FullName         string     `db:"nombre_completo" json:"full_name"`
	Phone            *string    `db:"telefono" json:"phone,omitempty"`
	Provider         string     `db:"provider" json:"provider"`
	EmailConfirmedAt *time.Time `db:"email_confirmed_at" json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Session is the result of a successful authentication.
type Session struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
	Roles   []string `json:"roles"`
}
