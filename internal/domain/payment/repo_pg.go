package payment

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

const paymentCols = `p.id, p.paciente_id, p.cita_id, p.monto, p.moneda, p.metodo_pago, p.estado,
	p.transaccion_id, p.voucher_data_url, p.fecha_pago, p.notas, p.created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.PatientID, &p.AppointmentID, &p.Amount, &p.Currency, &p.Method,
		&p.Status, &p.TransactionRef, &p.VoucherDataURL, &p.PaidAt, &p.Notes, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pagos (id, paciente_id, cita_id, monto, moneda, metodo_pago, estado,
			transaccion_id, voucher_data_url, fecha_pago, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.PatientID, p.AppointmentID, p.Amount, p.Currency, p.Method, p.Status,
		p.TransactionRef, p.VoucherDataURL, p.PaidAt, p.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scanPayment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+paymentCols+` FROM pagos p WHERE p.id = $1`, id))
}

func (r *repoPG) AttachToAppointment(ctx context.Context, paymentID, patientID, appointmentID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pagos SET cita_id = $3
		WHERE id = $1 AND paciente_id = $2 AND cita_id IS NULL`,
		paymentID, patientID, appointmentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM pagos WHERE paciente_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+paymentCols+` FROM pagos p
		WHERE p.paciente_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectPayments(rows)
	return items, total, err
}

func (r *repoPG) ListRecentByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+paymentCols+` FROM pagos p
		WHERE p.paciente_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*AdminView, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pagos`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+paymentCols+`,
			pa.nombre_completo, pa.telefono,
			c.fecha_cita, c.hora_cita, c.estado, m.nombre_completo
		FROM pagos p
		JOIN pacientes pa ON pa.id = p.paciente_id
		LEFT JOIN citas c ON c.id = p.cita_id
		LEFT JOIN medicos m ON m.id = c.medico_id
		ORDER BY COALESCE(p.fecha_pago, p.created_at) DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AdminView
	for rows.Next() {
		var v AdminView
		err := rows.Scan(&v.ID, &v.PatientID, &v.AppointmentID, &v.Amount, &v.Currency, &v.Method,
			&v.Status, &v.TransactionRef, &v.VoucherDataURL, &v.PaidAt, &v.Notes, &v.CreatedAt,
			&v.PatientName, &v.PatientPhone,
			&v.AppointmentDate, &v.AppointmentTime, &v.AppointmentStatus, &v.PractitionerName)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &v)
	}
	return items, total, rows.Err()
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pagos SET estado = $2,
			fecha_pago = CASE WHEN $2 = 'Completado' THEN NOW() ELSE fecha_pago END
		WHERE id = $1`, id, status)
	return err
}

func collectPayments(rows pgx.Rows) ([]*Payment, error) {
	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
