package practitioner

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

const practitionerCols = `id, nombre_completo, especialidad, precio_consulta, activo, user_id, created_at`

func (r *repoPG) scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(&p.ID, &p.FullName, &p.Specialty, &p.ConsultationFee, &p.Active,
		&p.UserID, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) ListActive(ctx context.Context, specialty string) ([]*Practitioner, error) {
	query := `SELECT ` + practitionerCols + ` FROM medicos WHERE activo = TRUE`
	args := []interface{}{}
	if specialty != "" {
		query += ` AND especialidad = $1`
		args = append(args, specialty)
	}
	query += ` ORDER BY nombre_completo ASC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Practitioner
	for rows.Next() {
		p, err := r.scanPractitioner(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return r.scanPractitioner(r.conn(ctx).QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM medicos WHERE id = $1`, id))
}

func (r *repoPG) Create(ctx context.Context, p *Practitioner) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicos (id, nombre_completo, especialidad, precio_consulta, activo, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.FullName, p.Specialty, p.ConsultationFee, p.Active, p.UserID)
	return err
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE medicos SET activo = $2 WHERE id = $1`, id, active)
	return err
}
