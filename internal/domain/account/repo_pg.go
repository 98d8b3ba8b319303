package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medicareperu/clinic-api/internal/platform/db"
)

// ErrDuplicateEmail is returned when the email already has an account.
var ErrDuplicateEmail = errors.New("duplicate email")

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const accountCols = `id, email, password_hash, nombre_completo, telefono, provider, email_confirmed_at, created_at, updated_at`

func (r *repoPG) scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Phone,
		&a.Provider, &a.EmailConfirmedAt, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, nombre_completo, telefono, provider, email_confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Email, a.PasswordHash, a.FullName, a.Phone, a.Provider, a.EmailConfirmedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *repoPG) UpdateProfile(ctx context.Context, id uuid.UUID, fullName string, phone *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE accounts SET nombre_completo=$2, telefono=COALESCE($3, telefono), updated_at=NOW()
		WHERE id = $1`,
		id, fullName, phone)
	return err
}
