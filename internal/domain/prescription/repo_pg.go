package prescription

import (
	"context"
	"fmt"

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

const rxCols = `r.id, r.paciente_id, r.medico_id, r.medicamento, r.dosis, r.frecuencia,
	r.duracion, r.indicaciones, r.estado, r.created_at`

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO recetas (id, paciente_id, medico_id, medicamento, dosis, frecuencia,
			duracion, indicaciones, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.PatientID, p.PractitionerID, p.Medication, p.Dosage, p.Frequency,
		p.Duration, p.Instructions, p.Status)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, onlyActive bool, limit, offset int) ([]*WithPractitioner, int, error) {
	where := `WHERE r.paciente_id = $1`
	args := []interface{}{patientID}
	if onlyActive {
		where += ` AND r.estado = $2`
		args = append(args, StatusActive)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM recetas r `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+rxCols+`, m.nombre_completo
		FROM recetas r
		JOIN medicos m ON m.id = r.medico_id `+where+`
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*WithPractitioner
	for rows.Next() {
		var p WithPractitioner
		err := rows.Scan(&p.ID, &p.PatientID, &p.PractitionerID, &p.Medication, &p.Dosage,
			&p.Frequency, &p.Duration, &p.Instructions, &p.Status, &p.CreatedAt,
			&p.PractitionerName)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM recetas WHERE paciente_id = $1 AND estado = $2`,
		patientID, StatusActive).Scan(&n)
	return n, err
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE recetas SET estado = $2 WHERE id = $1`, id, status)
	return err
}
