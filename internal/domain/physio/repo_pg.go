package physio

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

const physioCols = `id, name, surname, specialty, license_number, email, user_id, avatar, rating, created_at, updated_at`

func scanPhysio(row pgx.Row) (*Physio, error) {
	var p Physio
	err := row.Scan(&p.ID, &p.Name, &p.Surname, &p.Specialty, &p.LicenseNumber,
		&p.Email, &p.UserID, &p.Avatar, &p.Rating, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "No se ha encontrado el fisioterapeuta")
	}
	return &p, err
}

func scanPhysios(rows pgx.Rows) ([]*Physio, error) {
	defer rows.Close()
	var out []*Physio
	for rows.Next() {
		p, err := scanPhysio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// duplicateLicense maps the unique violation to a 400, not a 409. The client
// contract has always treated a duplicate license as a validation failure.
func duplicateLicense(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.E(apperr.ErrValidation, "El número de licencia ya existe")
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, p *Physio) error {
	p.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO physio (id, name, surname, specialty, license_number, email, user_id, avatar, rating)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Surname, p.Specialty, p.LicenseNumber, p.Email, p.UserID, p.Avatar, p.Rating).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	return duplicateLicense(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Physio, error) {
	return scanPhysio(r.pool.QueryRow(ctx, `SELECT `+physioCols+` FROM physio WHERE id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Physio, error) {
	return scanPhysio(r.pool.QueryRow(ctx, `SELECT `+physioCols+` FROM physio WHERE user_id = $1`, userID))
}

func (r *repoPG) List(ctx context.Context) ([]*Physio, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+physioCols+` FROM physio ORDER BY surname, name`)
	if err != nil {
		return nil, err
	}
	return scanPhysios(rows)
}

func (r *repoPG) FindBySpecialty(ctx context.Context, specialty string) ([]*Physio, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+physioCols+` FROM physio
		WHERE specialty ILIKE '%' || $1 || '%'
		ORDER BY surname, name`, specialty)
	if err != nil {
		return nil, err
	}
	return scanPhysios(rows)
}

func (r *repoPG) Update(ctx context.Context, p *Physio) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE physio
		SET name = $2, surname = $3, specialty = $4, license_number = $5,
		    email = $6, user_id = $7, avatar = $8, rating = $9, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Surname, p.Specialty, p.LicenseNumber, p.Email, p.UserID, p.Avatar, p.Rating)
	if err != nil {
		return duplicateLicense(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el fisioterapeuta")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM physio WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el fisioterapeuta")
	}
	return nil
}
