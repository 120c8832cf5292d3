package erezept

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by the erezept table.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(_ context.Context) queryable {
	return r.pool
}

const cols = `id, medication_name, dosage, issued_at, expires_at, status,
	patient_id, practitioner_id, prescription_id`

func scanErezept(row pgx.Row) (*Erezept, error) {
	var e Erezept
	err := row.Scan(&e.ID, &e.MedicationName, &e.Dosage, &e.IssuedAt, &e.ExpiresAt,
		&e.Status, &e.PatientID, &e.PractitionerID, &e.PrescriptionID)
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Erezept) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO erezept (medication_name, dosage, issued_at, expires_at, status,
			patient_id, practitioner_id, prescription_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		e.MedicationName, e.Dosage, e.IssuedAt, e.ExpiresAt, e.Status,
		e.PatientID, e.PractitionerID, e.PrescriptionID).Scan(&e.ID)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Erezept, error) {
	return scanErezept(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM erezept WHERE id = $1`, id))
}

func (r *repoPG) GetByPrescriptionID(ctx context.Context, prescriptionID string) (*Erezept, error) {
	return scanErezept(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM erezept WHERE prescription_id = $1`, prescriptionID))
}

func (r *repoPG) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM erezept WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) ExistsByPrescriptionID(ctx context.Context, prescriptionID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM erezept WHERE prescription_id = $1)`, prescriptionID).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, e *Erezept) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE erezept SET medication_name=$2, dosage=$3, issued_at=$4, expires_at=$5,
			status=$6, patient_id=$7, practitioner_id=$8, prescription_id=$9
		WHERE id = $1`,
		e.ID, e.MedicationName, e.Dosage, e.IssuedAt, e.ExpiresAt,
		e.Status, e.PatientID, e.PractitionerID, e.PrescriptionID)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM erezept WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*Erezept, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM erezept ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Erezept{}
	for rows.Next() {
		e, err := scanErezept(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
