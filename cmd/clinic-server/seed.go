package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// seedData loads the fixed role catalog, a starter permission set, and a
// demo practitioner roster. Every insert is idempotent.
func seedData(ctx context.Context, pool *pgxpool.Pool) error {
	roles := []struct {
		name, display, description string
	}{
		{"administrador", "Administrador", "Acceso completo al panel de administración"},
		{"medico", "Médico", "Gestión de recetas y exámenes de sus pacientes"},
		{"paciente", "Paciente", "Reserva de citas y acceso a su historial"},
		{"recepcionista", "Recepcionista", "Apoyo en la gestión de citas"},
	}
	for _, r := range roles {
		if _, err := pool.Exec(ctx, `
			INSERT INTO roles (nombre, nombre_visible, descripcion)
			VALUES ($1, $2, $3)
			ON CONFLICT (nombre) DO NOTHING`,
			r.name, r.display, r.description); err != nil {
			return err
		}
	}

	permissions := []struct {
		name, resource, action string
		roles                  []string
	}{
		{"citas.reservar", "citas", "crear", []string{"paciente", "recepcionista"}},
		{"citas.cancelar", "citas", "actualizar", []string{"paciente", "recepcionista"}},
		{"pagos.registrar", "pagos", "crear", []string{"paciente"}},
		{"pagos.revisar", "pagos", "actualizar", []string{"administrador"}},
		{"recetas.crear", "recetas", "crear", []string{"medico"}},
		{"examenes.crear", "examenes", "crear", []string{"medico"}},
	}
	for _, p := range permissions {
		if _, err := pool.Exec(ctx, `
			INSERT INTO permissions (nombre, recurso, accion)
			VALUES ($1, $2, $3)
			ON CONFLICT (nombre) DO NOTHING`,
			p.name, p.resource, p.action); err != nil {
			return err
		}
		for _, role := range p.roles {
			if _, err := pool.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				SELECT r.id, p.id FROM roles r, permissions p
				WHERE r.nombre = $1 AND p.nombre = $2
				ON CONFLICT DO NOTHING`,
				role, p.name); err != nil {
				return err
			}
		}
	}

	practitioners := []struct {
		name, specialty string
		fee             float64
	}{
		{"Dr. Carlos Mendoza Ríos", "Consulta General", 80},
		{"Dra. María Fernández Soto", "Cardiología", 150},
		{"Dr. Jorge Quispe Huamán", "Dermatología", 120},
		{"Dra. Ana Lucía Torres Vega", "Pediatría", 100},
		{"Dr. Luis Alberto Rojas Paz", "Ginecología", 130},
		{"Dra. Carmen Salazar Díaz", "Oftalmología", 110},
		{"Dr. Pedro Castillo Luna", "Traumatología", 140},
		{"Dra. Rosa Gutiérrez Flores", "Neurología", 160},
	}
	for _, doc := range practitioners {
		if _, err := pool.Exec(ctx, `
			INSERT INTO medicos (id, nombre_completo, especialidad, precio_consulta, activo)
			VALUES (gen_random_uuid(), $1, $2, $3, TRUE)
			ON CONFLICT (nombre_completo) DO NOTHING`,
			doc.name, doc.specialty, doc.fee); err != nil {
			return err
		}
	}

	return nil
}
