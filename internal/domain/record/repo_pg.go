package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordCols = `id, patient_id, medical_record, appointments, created_at, updated_at`

// scanRecord relies on pgx's jsonb codec to unmarshal the appointments
// column straight into the slice.
func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.PatientID, &r.MedicalRecord, &r.Appointments, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "Record not found")
	}
	if err != nil {
		return nil, err
	}
	if r.Appointments == nil {
		r.Appointments = []Appointment{}
	}
	return &r, nil
}

func scanRecords(rows pgx.Rows) ([]*Record, error) {
	defer rows.Close()
	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	if rec.Appointments == nil {
		rec.Appointments = []Appointment{}
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO record (id, patient_id, medical_record, appointments)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		rec.ID, rec.PatientID, rec.MedicalRecord, rec.Appointments).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.E(apperr.ErrConflict, "El paciente ya tiene un expediente")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM record WHERE id = $1`, id))
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM record WHERE patient_id = $1`, patientID))
}

func (r *repoPG) List(ctx context.Context) ([]*Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordCols+` FROM record ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (r *repoPG) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM record
		WHERE patient_id = ANY($1)
		ORDER BY created_at`, patientIDs)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (r *repoPG) UpdateMedicalRecord(ctx context.Context, id uuid.UUID, text string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE record SET medical_record = $2, updated_at = NOW() WHERE id = $1`, id, text)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "Record not found")
	}
	return nil
}

func (r *repoPG) ReplaceAppointments(ctx context.Context, id uuid.UUID, apps []Appointment) error {
	if apps == nil {
		apps = []Appointment{}
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE record SET appointments = $2, updated_at = NOW() WHERE id = $1`, id, apps)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "Record not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM record WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "Record not found")
	}
	return nil
}

func (r *repoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM record WHERE patient_id = $1`, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "Record not found")
	}
	return nil
}
