package member

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

const baseCols = `id, status, is_deleted, deleted_at, deleted_by, created_at, updated_at`

// =========== Person Repository ===========

type personRepoPG struct{ pool *pgxpool.Pool }

func NewPersonRepoPG(pool *pgxpool.Pool) PersonRepository { return &personRepoPG{pool: pool} }

const personCols = baseCols + `, member_number, first_name, last_name, email, phone, date_of_birth, company_id, scheme_id`

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.Status, &p.IsDeleted, &p.DeletedAt, &p.DeletedBy, &p.CreatedAt, &p.UpdatedAt,
		&p.MemberNumber, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth, &p.CompanyID, &p.SchemeID)
	return &p, err
}

func (r *personRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *personRepoPG) Get(ctx context.Context, id uuid.UUID) (*Person, error) {
	p, err := scanPerson(r.conn(ctx).QueryRow(ctx,
		`SELECT `+personCols+` FROM persons WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("member", id.String())
	}
	return p, err
}

func (r *personRepoPG) GetAny(ctx context.Context, id uuid.UUID) (*Person, error) {
	p, err := scanPerson(r.conn(ctx).QueryRow(ctx,
		`SELECT `+personCols+` FROM persons WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("member", id.String())
	}
	return p, err
}

func (r *personRepoPG) Create(ctx context.Context, p *Person) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO persons (id, status, created_at, updated_at,
			member_number, first_name, last_name, email, phone, date_of_birth, company_id, scheme_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.Status, p.CreatedAt, p.UpdatedAt,
		p.MemberNumber, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.CompanyID, p.SchemeID)
	return apperr.FromStorage("member", err)
}

func (r *personRepoPG) Update(ctx context.Context, p *Person) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE persons SET status=$2, updated_at=$3,
			member_number=$4, first_name=$5, last_name=$6, email=$7, phone=$8,
			date_of_birth=$9, company_id=$10, scheme_id=$11
		WHERE id = $1`,
		p.ID, p.Status, p.UpdatedAt,
		p.MemberNumber, p.FirstName, p.LastName, p.Email, p.Phone,
		p.DateOfBirth, p.CompanyID, p.SchemeID)
	return apperr.FromStorage("member", err)
}

func (r *personRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE persons SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *personRepoPG) List(ctx context.Context, companyID, schemeID uuid.UUID, q string, limit, offset int) ([]*Person, int, error) {
	qb := query.New("persons", personCols, "is_deleted").
		Equals("company_id", companyID).
		Equals("scheme_id", schemeID).
		Text(q, "first_name", "last_name", "member_number", "email").
		OrderBy("created_at DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Company Repository ===========

type companyRepoPG struct{ pool *pgxpool.Pool }

func NewCompanyRepoPG(pool *pgxpool.Pool) CompanyRepository { return &companyRepoPG{pool: pool} }

const companyCols = baseCols + `, name, contact_email, phone, address`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Status, &c.IsDeleted, &c.DeletedAt, &c.DeletedBy, &c.CreatedAt, &c.UpdatedAt,
		&c.Name, &c.ContactEmail, &c.Phone, &c.Address)
	return &c, err
}

func (r *companyRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *companyRepoPG) Get(ctx context.Context, id uuid.UUID) (*Company, error) {
	c, err := scanCompany(r.conn(ctx).QueryRow(ctx,
		`SELECT `+companyCols+` FROM companies WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("company", id.String())
	}
	return c, err
}

func (r *companyRepoPG) GetAny(ctx context.Context, id uuid.UUID) (*Company, error) {
	c, err := scanCompany(r.conn(ctx).QueryRow(ctx,
		`SELECT `+companyCols+` FROM companies WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("company", id.String())
	}
	return c, err
}

func (r *companyRepoPG) Create(ctx context.Context, c *Company) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO companies (id, status, created_at, updated_at, name, contact_email, phone, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.Status, c.CreatedAt, c.UpdatedAt, c.Name, c.ContactEmail, c.Phone, c.Address)
	return apperr.FromStorage("company", err)
}

func (r *companyRepoPG) Update(ctx context.Context, c *Company) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE companies SET status=$2, updated_at=$3, name=$4, contact_email=$5, phone=$6, address=$7
		WHERE id = $1`,
		c.ID, c.Status, c.UpdatedAt, c.Name, c.ContactEmail, c.Phone, c.Address)
	return apperr.FromStorage("company", err)
}

func (r *companyRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE companies SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *companyRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*Company, int, error) {
	qb := query.New("companies", companyCols, "is_deleted").
		Text(q, "name", "contact_email").
		OrderBy("name ASC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// =========== Scheme Repository ===========

type schemeRepoPG struct{ pool *pgxpool.Pool }

func NewSchemeRepoPG(pool *pgxpool.Pool) SchemeRepository { return &schemeRepoPG{pool: pool} }

const schemeCols = baseCols + `, company_id, name, plan_code, start_date, end_date`

func scanScheme(row pgx.Row) (*Scheme, error) {
	var s Scheme
	err := row.Scan(&s.ID, &s.Status, &s.IsDeleted, &s.DeletedAt, &s.DeletedBy, &s.CreatedAt, &s.UpdatedAt,
		&s.CompanyID, &s.Name, &s.PlanCode, &s.StartDate, &s.EndDate)
	return &s, err
}

func (r *schemeRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *schemeRepoPG) Get(ctx context.Context, id uuid.UUID) (*Scheme, error) {
	s, err := scanScheme(r.conn(ctx).QueryRow(ctx,
		`SELECT `+schemeCols+` FROM schemes WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("scheme", id.String())
	}
	return s, err
}

func (r *schemeRepoPG) GetAny(ctx context.Context, id uuid.UUID) (*Scheme, error) {
	s, err := scanScheme(r.conn(ctx).QueryRow(ctx,
		`SELECT `+schemeCols+` FROM schemes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("scheme", id.String())
	}
	return s, err
}

func (r *schemeRepoPG) Create(ctx context.Context, s *Scheme) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO schemes (id, status, created_at, updated_at, company_id, name, plan_code, start_date, end_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.Status, s.CreatedAt, s.UpdatedAt, s.CompanyID, s.Name, s.PlanCode, s.StartDate, s.EndDate)
	return apperr.FromStorage("scheme", err)
}

func (r *schemeRepoPG) Update(ctx context.Context, s *Scheme) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE schemes SET status=$2, updated_at=$3, company_id=$4, name=$5, plan_code=$6, start_date=$7, end_date=$8
		WHERE id = $1`,
		s.ID, s.Status, s.UpdatedAt, s.CompanyID, s.Name, s.PlanCode, s.StartDate, s.EndDate)
	return apperr.FromStorage("scheme", err)
}

func (r *schemeRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE schemes SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *schemeRepoPG) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Scheme, int, error) {
	qb := query.New("schemes", schemeCols, "is_deleted").
		Equals("company_id", companyID).
		OrderBy("created_at DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Scheme
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
