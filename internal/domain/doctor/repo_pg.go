package doctor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
	"github.com/HSPiira/ultra-sub001/internal/platform/db"
	"github.com/HSPiira/ultra-sub001/internal/platform/query"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `d.id, d.status, d.is_deleted, d.deleted_at, d.deleted_by, d.created_at, d.updated_at,
	d.first_name, d.last_name, d.license_number, d.specialty, d.email, d.phone`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Status, &d.IsDeleted, &d.DeletedAt, &d.DeletedBy, &d.CreatedAt, &d.UpdatedAt,
		&d.FirstName, &d.LastName, &d.LicenseNumber, &d.Specialty, &d.Email, &d.Phone)
	return &d, err
}

func (r *repoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors d WHERE d.id = $1 AND d.is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("doctor", id.String())
	}
	return d, err
}

func (r *repoPG) GetAny(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors d WHERE d.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("doctor", id.String())
	}
	return d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, status, created_at, updated_at, first_name, last_name, license_number, specialty, email, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.Status, d.CreatedAt, d.UpdatedAt, d.FirstName, d.LastName, d.LicenseNumber, d.Specialty, d.Email, d.Phone)
	return apperr.FromStorage("doctor", err)
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET status=$2, updated_at=$3, first_name=$4, last_name=$5, license_number=$6, specialty=$7, email=$8, phone=$9
		WHERE id = $1`,
		d.ID, d.Status, d.UpdatedAt, d.FirstName, d.LastName, d.LicenseNumber, d.Specialty, d.Email, d.Phone)
	return apperr.FromStorage("doctor", err)
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	qb := query.New("doctors d", doctorCols, "d.is_deleted").
		Equals("d.status", string(f.Status)).
		Text(f.Query, "d.first_name", "d.last_name", "d.license_number").
		OrderBy("d.last_name ASC, d.first_name ASC")
	if f.HospitalID != uuid.Nil {
		qb.Join("JOIN doctor_hospitals dh ON dh.doctor_id = d.id").
			Equals("dh.hospital_id", f.HospitalID)
	}
	if f.All {
		qb.IncludeDeleted()
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	byID := map[uuid.UUID]*Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if len(items) == 0 {
		return items, total, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, d := range items {
		ids = append(ids, d.ID)
	}
	affRows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.doctor_id, a.hospital_id, a.role, a.start_date, a.end_date, a.is_primary, a.created_at, h.name
		FROM doctor_hospital_affiliations a
		JOIN hospitals h ON h.id = a.hospital_id
		WHERE a.doctor_id = ANY($1)
		ORDER BY a.created_at ASC`, ids)
	if err != nil {
		return nil, 0, err
	}
	defer affRows.Close()
	for affRows.Next() {
		var a Affiliation
		if err := affRows.Scan(&a.ID, &a.DoctorID, &a.HospitalID, &a.Role, &a.StartDate, &a.EndDate, &a.IsPrimary, &a.CreatedAt, &a.HospitalName); err != nil {
			return nil, 0, err
		}
		if d := byID[a.DoctorID]; d != nil {
			d.Affiliations = append(d.Affiliations, &a)
			d.HospitalIDs = append(d.HospitalIDs, a.HospitalID)
		}
	}
	return items, total, affRows.Err()
}

func (r *repoPG) CountActiveClaims(ctx context.Context, doctorID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM claims WHERE doctor_id = $1 AND is_deleted = FALSE`, doctorID).Scan(&n)
	return n, err
}

func (r *repoPG) ListAffiliations(ctx context.Context, doctorID uuid.UUID) ([]*Affiliation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.doctor_id, a.hospital_id, a.role, a.start_date, a.end_date, a.is_primary, a.created_at, h.name
		FROM doctor_hospital_affiliations a
		JOIN hospitals h ON h.id = a.hospital_id
		WHERE a.doctor_id = $1
		ORDER BY a.created_at ASC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var affs []*Affiliation
	for rows.Next() {
		var a Affiliation
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.HospitalID, &a.Role, &a.StartDate, &a.EndDate, &a.IsPrimary, &a.CreatedAt, &a.HospitalName); err != nil {
			return nil, err
		}
		affs = append(affs, &a)
	}
	return affs, rows.Err()
}

func (r *repoPG) ReplaceAffiliations(ctx context.Context, doctorID uuid.UUID, affs []*Affiliation) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM doctor_hospital_affiliations WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}
	if _, err := c.Exec(ctx, `DELETE FROM doctor_hospitals WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}

	hospitals := map[uuid.UUID]bool{}
	for _, a := range affs {
		_, err := c.Exec(ctx, `
			INSERT INTO doctor_hospital_affiliations (id, doctor_id, hospital_id, role, start_date, end_date, is_primary, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			a.ID, a.DoctorID, a.HospitalID, a.Role, a.StartDate, a.EndDate, a.IsPrimary, a.CreatedAt)
		if err != nil {
			return apperr.FromStorage("affiliation", err)
		}
		if !hospitals[a.HospitalID] {
			hospitals[a.HospitalID] = true
			if _, err := c.Exec(ctx, `
				INSERT INTO doctor_hospitals (doctor_id, hospital_id) VALUES ($1,$2)`,
				a.DoctorID, a.HospitalID); err != nil {
				return apperr.FromStorage("affiliation", err)
			}
		}
	}
	return nil
}

func (r *repoPG) HasAffiliation(ctx context.Context, doctorID, hospitalID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doctor_hospital_affiliations
			WHERE doctor_id = $1 AND hospital_id = $2
		)`, doctorID, hospitalID).Scan(&exists)
	return exists, err
}
