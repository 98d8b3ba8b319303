package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medicareperu/clinic-api/internal/platform/db"
)

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

const patientCols = `id, nombre_completo, telefono, fecha_nacimiento, genero, direccion, created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.Phone, &p.DateOfBirth, &p.Gender, &p.Address,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

// Upsert inserts the patient row keyed by account ID, or refreshes name and
// phone when the row already exists. insertName seeds the name of a new row;
// on conflict only a non-empty p.FullName replaces the stored name, so a
// derived placeholder never clobbers a real one.
func (r *repoPG) Upsert(ctx context.Context, p *Patient, insertName string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pacientes (id, nombre_completo, telefono)
		VALUES ($1, $4, $3)
		ON CONFLICT (id) DO UPDATE SET
			nombre_completo = COALESCE(NULLIF($2, ''), pacientes.nombre_completo),
			telefono = COALESCE(EXCLUDED.telefono, pacientes.telefono),
			updated_at = NOW()`,
		p.ID, p.FullName, p.Phone, insertName)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM pacientes WHERE id = $1`, id))
}

func (r *repoPG) UpdateProfile(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pacientes SET nombre_completo=$2, telefono=$3, fecha_nacimiento=$4,
			genero=$5, direccion=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.Phone, p.DateOfBirth, p.Gender, p.Address)
	return err
}
