package patient

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

const patientCols = `id, name, surname, birth_date, address, insurance_number, email, user_id, avatar, lat, lng, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Surname, &p.BirthDate, &p.Address, &p.InsuranceNumber,
		&p.Email, &p.UserID, &p.Avatar, &p.Lat, &p.Lng, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	return &p, err
}

func scanPatients(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func duplicateInsurance(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.E(apperr.ErrConflict, "El número de seguro ya existe")
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patient (id, name, surname, birth_date, address, insurance_number, email, user_id, avatar, lat, lng)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Surname, p.BirthDate, p.Address, p.InsuranceNumber,
		p.Email, p.UserID, p.Avatar, p.Lat, p.Lng).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	return duplicateInsurance(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE user_id = $1`, userID))
}

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY surname, name`)
	if err != nil {
		return nil, err
	}
	return scanPatients(rows)
}

func (r *repoPG) FindBySurname(ctx context.Context, surname string) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE surname ILIKE '%' || $1 || '%'
		ORDER BY surname, name`, surname)
	if err != nil {
		return nil, err
	}
	return scanPatients(rows)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient
		SET name = $2, surname = $3, birth_date = $4, address = $5, insurance_number = $6,
		    email = $7, user_id = $8, avatar = $9, lat = $10, lng = $11, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Surname, p.BirthDate, p.Address, p.InsuranceNumber,
		p.Email, p.UserID, p.Avatar, p.Lat, p.Lng)
	if err != nil {
		return duplicateInsurance(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	return nil
}
