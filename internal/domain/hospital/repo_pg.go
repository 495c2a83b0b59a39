package hospital

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

const hospitalCols = `h.id, h.status, h.is_deleted, h.deleted_at, h.deleted_by, h.created_at, h.updated_at,
	h.name, h.branch_of, h.email, h.phone, h.address, h.city`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Status, &h.IsDeleted, &h.DeletedAt, &h.DeletedBy, &h.CreatedAt, &h.UpdatedAt,
		&h.Name, &h.BranchOf, &h.Email, &h.Phone, &h.Address, &h.City)
	return &h, err
}

func scanHospitalWithParent(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Status, &h.IsDeleted, &h.DeletedAt, &h.DeletedBy, &h.CreatedAt, &h.UpdatedAt,
		&h.Name, &h.BranchOf, &h.Email, &h.Phone, &h.Address, &h.City, &h.ParentName)
	return &h, err
}

func (r *repoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := scanHospital(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals h WHERE h.id = $1 AND h.is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("hospital", id.String())
	}
	return h, err
}

func (r *repoPG) GetAny(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := scanHospital(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals h WHERE h.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("hospital", id.String())
	}
	return h, err
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospitals (id, status, created_at, updated_at, name, branch_of, email, phone, address, city)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		h.ID, h.Status, h.CreatedAt, h.UpdatedAt, h.Name, h.BranchOf, h.Email, h.Phone, h.Address, h.City)
	return apperr.FromStorage("hospital", err)
}

func (r *repoPG) Update(ctx context.Context, h *Hospital) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospitals SET status=$2, updated_at=$3, name=$4, branch_of=$5, email=$6, phone=$7, address=$8, city=$9
		WHERE id = $1`,
		h.ID, h.Status, h.UpdatedAt, h.Name, h.BranchOf, h.Email, h.Phone, h.Address, h.City)
	return apperr.FromStorage("hospital", err)
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospitals SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Hospital, int, error) {
	qb := query.New("hospitals h", hospitalCols+`, p.name`, "h.is_deleted").
		Join("LEFT JOIN hospitals p ON p.id = h.branch_of").
		Equals("h.status", string(f.Status)).
		Equals("h.branch_of", f.BranchOf).
		Text(f.Query, "h.name", "h.city").
		OrderBy("h.name ASC")
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

	var items []*Hospital
	for rows.Next() {
		h, err := scanHospitalWithParent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountActiveClaims(ctx context.Context, hospitalID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM claims WHERE hospital_id = $1 AND is_deleted = FALSE`, hospitalID).Scan(&n)
	return n, err
}
