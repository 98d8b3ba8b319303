package exam

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

const examCols = `id, paciente_id, medico_id, tipo_examen, estado, resultado, created_at`

func scanExam(row pgx.Row) (*Exam, error) {
	var e Exam
	err := row.Scan(&e.ID, &e.PatientID, &e.PractitionerID, &e.Type, &e.Status,
		&e.ResultNotes, &e.RequestedAt)
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Exam) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO examenes (id, paciente_id, medico_id, tipo_examen, estado)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.PatientID, e.PractitionerID, e.Type, e.Status)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM examenes WHERE paciente_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+examCols+` FROM examenes
		WHERE paciente_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountOpenByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM examenes
		WHERE paciente_id = $1 AND estado IN ($2, $3)`,
		patientID, StatusPending, StatusInProgress).Scan(&n)
	return n, err
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string, resultNotes *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE examenes SET estado = $2, resultado = COALESCE($3, resultado)
		WHERE id = $1`, id, status, resultNotes)
	return err
}
