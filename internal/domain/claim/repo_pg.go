package claim

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

const claimCols = `c.id, c.status, c.is_deleted, c.deleted_at, c.deleted_by, c.created_at, c.updated_at,
	c.person_id, c.hospital_id, c.doctor_id, c.service_date, c.claim_status, c.invoice_number`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.Status, &c.IsDeleted, &c.DeletedAt, &c.DeletedBy, &c.CreatedAt, &c.UpdatedAt,
		&c.PersonID, &c.HospitalID, &c.DoctorID, &c.ServiceDate, &c.ClaimStatus, &c.InvoiceNumber)
	return &c, err
}

func (r *repoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := scanClaim(r.conn(ctx).QueryRow(ctx,
		`SELECT `+claimCols+` FROM claims c WHERE c.id = $1 AND c.is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("claim", id.String())
	}
	return c, err
}

func (r *repoPG) GetAny(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := scanClaim(r.conn(ctx).QueryRow(ctx,
		`SELECT `+claimCols+` FROM claims c WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("claim", id.String())
	}
	return c, err
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := scanClaim(r.conn(ctx).QueryRow(ctx,
		`SELECT `+claimCols+` FROM claims c WHERE c.id = $1 AND c.is_deleted = FALSE FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("claim", id.String())
	}
	return c, err
}

func (r *repoPG) Create(ctx context.Context, c *Claim) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claims (id, status, created_at, updated_at, person_id, hospital_id, doctor_id, service_date, claim_status, invoice_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.Status, c.CreatedAt, c.UpdatedAt, c.PersonID, c.HospitalID, c.DoctorID, c.ServiceDate, c.ClaimStatus, c.InvoiceNumber)
	return apperr.FromStorage("claim", err)
}

func (r *repoPG) Update(ctx context.Context, c *Claim) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims SET status=$2, updated_at=$3, person_id=$4, hospital_id=$5, doctor_id=$6, service_date=$7, claim_status=$8, invoice_number=$9
		WHERE id = $1`,
		c.ID, c.Status, c.UpdatedAt, c.PersonID, c.HospitalID, c.DoctorID, c.ServiceDate, c.ClaimStatus, c.InvoiceNumber)
	return apperr.FromStorage("claim", err)
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Claim, int, error) {
	qb := query.New("claims c", claimCols+`,
		p.first_name || ' ' || p.last_name, h.name, d.first_name || ' ' || d.last_name`, "c.is_deleted").
		Join("JOIN persons p ON p.id = c.person_id").
		Join("JOIN hospitals h ON h.id = c.hospital_id").
		Join("LEFT JOIN doctors d ON d.id = c.doctor_id").
		Equals("c.claim_status", string(f.Status)).
		Equals("c.person_id", f.PersonID).
		Equals("c.hospital_id", f.HospitalID).
		Equals("c.doctor_id", f.DoctorID).
		Text(f.Query, "c.invoice_number", "p.first_name", "p.last_name").
		DateRange("c.service_date", f.DateFrom, f.DateTo).
		OrderBy("c.service_date DESC, c.id DESC")
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

	var items []*Claim
	for rows.Next() {
		var c Claim
		err := rows.Scan(&c.ID, &c.Status, &c.IsDeleted, &c.DeletedAt, &c.DeletedBy, &c.CreatedAt, &c.UpdatedAt,
			&c.PersonID, &c.HospitalID, &c.DoctorID, &c.ServiceDate, &c.ClaimStatus, &c.InvoiceNumber,
			&c.MemberName, &c.HospitalName, &c.DoctorName)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListDetails(ctx context.Context, claimID uuid.UUID) ([]*Detail, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, claim_id, description, quantity, unit_price, total_amount, created_at
		FROM claim_details WHERE claim_id = $1 ORDER BY created_at ASC, id ASC`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.Description, &d.Quantity, &d.UnitPrice, &d.TotalAmount, &d.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

func (r *repoPG) ListPayments(ctx context.Context, claimID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, claim_id, method, reference, amount, created_at
		FROM claim_payments WHERE claim_id = $1 ORDER BY created_at ASC, id ASC`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.ClaimID, &p.Method, &p.Reference, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func (r *repoPG) ReplaceDetails(ctx context.Context, claimID uuid.UUID, details []*Detail) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM claim_details WHERE claim_id = $1`, claimID); err != nil {
		return err
	}
	for _, d := range details {
		_, err := c.Exec(ctx, `
			INSERT INTO claim_details (id, claim_id, description, quantity, unit_price, total_amount, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			d.ID, d.ClaimID, d.Description, d.Quantity, d.UnitPrice, d.TotalAmount, d.CreatedAt)
		if err != nil {
			return apperr.FromStorage("claim detail", err)
		}
	}
	return nil
}

func (r *repoPG) ReplacePayments(ctx context.Context, claimID uuid.UUID, payments []*Payment) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM claim_payments WHERE claim_id = $1`, claimID); err != nil {
		return err
	}
	for _, p := range payments {
		_, err := c.Exec(ctx, `
			INSERT INTO claim_payments (id, claim_id, method, reference, amount, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.ClaimID, p.Method, p.Reference, p.Amount, p.CreatedAt)
		if err != nil {
			return apperr.FromStorage("claim payment", err)
		}
	}
	return nil
}
