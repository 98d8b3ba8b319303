package appointment

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

const apptCols = `c.id, c.paciente_id, c.medico_id, c.fecha_cita, c.hora_cita, c.estado,
	c.motivo, c.notas, c.created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PractitionerID, &a.Date, &a.Time, &a.Status,
		&a.Reason, &a.Notes, &a.CreatedAt)
	return &a, err
}

func scanWithPractitioner(rows pgx.Rows) (*WithPractitioner, error) {
	var a WithPractitioner
	err := rows.Scan(&a.ID, &a.PatientID, &a.PractitionerID, &a.Date, &a.Time, &a.Status,
		&a.Reason, &a.Notes, &a.CreatedAt, &a.PractitionerName, &a.PractitionerSpecialty)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO citas (id, paciente_id, medico_id, fecha_cita, hora_cita, estado, motivo, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.PatientID, a.PractitionerID, a.Date, a.Time, a.Status, a.Reason, a.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM citas c WHERE c.id = $1`, id))
}

const withPractitionerQuery = `
	SELECT ` + apptCols + `, m.nombre_completo, m.especialidad
	FROM citas c
	JOIN medicos m ON m.id = c.medico_id`

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*WithPractitioner, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM citas WHERE paciente_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, withPractitionerQuery+`
		WHERE c.paciente_id = $1
		ORDER BY c.fecha_cita DESC, c.hora_cita DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*WithPractitioner, error) {
	rows, err := r.conn(ctx).Query(ctx, withPractitionerQuery+`
		WHERE c.paciente_id = $1
		  AND c.fecha_cita >= CURRENT_DATE
		  AND c.estado NOT IN ($2, $3)
		ORDER BY c.fecha_cita ASC, c.hora_cita ASC
		LIMIT $4`, patientID, StatusCancelled, StatusCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ListByStatus(ctx context.Context, patientID uuid.UUID, status string, limit int) ([]*WithPractitioner, error) {
	rows, err := r.conn(ctx).Query(ctx, withPractitionerQuery+`
		WHERE c.paciente_id = $1 AND c.estado = $2
		ORDER BY c.fecha_cita DESC, c.hora_cita DESC
		LIMIT $3`, patientID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) CountsByStatus(ctx context.Context, patientID uuid.UUID) (*StatusCounts, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT estado, COUNT(*) FROM citas WHERE paciente_id = $1 GROUP BY estado`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := &StatusCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		switch status {
		case StatusScheduled:
			counts.Scheduled = n
		case StatusPendingPayment:
			counts.Pending = n
		case StatusConfirmed:
			counts.Confirmed = n
		case StatusCancelled:
			counts.Cancelled = n
		case StatusCompleted:
			counts.Completed = n
		}
	}
	return counts, rows.Err()
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE citas SET estado = $2 WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) CancelOwned(ctx context.Context, id, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE citas SET estado = $3
		WHERE id = $1 AND paciente_id = $2 AND estado NOT IN ($3, $4)`,
		id, patientID, StatusCancelled, StatusCompleted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) DeleteOwned(ctx context.Context, id, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM citas WHERE id = $1 AND paciente_id = $2`, id, patientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func collect(rows pgx.Rows) ([]*WithPractitioner, error) {
	var items []*WithPractitioner
	for rows.Next() {
		a, err := scanWithPractitioner(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
