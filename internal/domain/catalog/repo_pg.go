package catalog

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

// =========== MedicalService Repository ===========

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

const serviceCols = baseCols + `, code, name, description`

func scanService(row pgx.Row) (*MedicalService, error) {
	var m MedicalService
	err := row.Scan(&m.ID, &m.Status, &m.IsDeleted, &m.DeletedAt, &m.DeletedBy, &m.CreatedAt, &m.UpdatedAt,
		&m.Code, &m.Name, &m.Description)
	return &m, err
}

func (r *serviceRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *serviceRepoPG) Get(ctx context.Context, id uuid.UUID) (*MedicalService, error) {
	m, err := scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM medical_services WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("service", id.String())
	}
	return m, err
}

func (r *serviceRepoPG) GetAny(ctx context.Context, id uuid.UUID) (*MedicalService, error) {
	m, err := scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM medical_services WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("service", id.String())
	}
	return m, err
}

func (r *serviceRepoPG) Create(ctx context.Context, m *MedicalService) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_services (id, status, created_at, updated_at, code, name, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Status, m.CreatedAt, m.UpdatedAt, m.Code, m.Name, m.Description)
	return apperr.FromStorage("service", err)
}

func (r *serviceRepoPG) Update(ctx context.Context, m *MedicalService) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_services SET status=$2, updated_at=$3, code=$4, name=$5, description=$6 WHERE id = $1`,
		m.ID, m.Status, m.UpdatedAt, m.Code, m.Name, m.Description)
	return apperr.FromStorage("service", err)
}

func (r *serviceRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_services SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *serviceRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*MedicalService, int, error) {
	qb := query.New("medical_services", serviceCols, "is_deleted").
		Text(q, "name", "code").
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

	var items []*MedicalService
	for rows.Next() {
		m, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// =========== Medicine Repository ===========

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository { return &medicineRepoPG{pool: pool} }

const medicineCols = baseCols + `, code, name, form, strength`

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Status, &m.IsDeleted, &m.DeletedAt, &m.DeletedBy, &m.CreatedAt, &m.UpdatedAt,
		&m.Code, &m.Name, &m.Form, &m.Strength)
	return &m, err
}

func (r *medicineRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *medicineRepoPG) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := scanMedicine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicines WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medicine", id.String())
	}
	return m, err
}

func (r *medicineRepoPG) GetAny(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := scanMedicine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicines WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medicine", id.String())
	}
	return m, err
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicines (id, status, created_at, updated_at, code, name, form, strength)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.Status, m.CreatedAt, m.UpdatedAt, m.Code, m.Name, m.Form, m.Strength)
	return apperr.FromStorage("medicine", err)
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicines SET status=$2, updated_at=$3, code=$4, name=$5, form=$6, strength=$7 WHERE id = $1`,
		m.ID, m.Status, m.UpdatedAt, m.Code, m.Name, m.Form, m.Strength)
	return apperr.FromStorage("medicine", err)
}

func (r *medicineRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicines SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *medicineRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*Medicine, int, error) {
	qb := query.New("medicines", medicineCols, "is_deleted").
		Text(q, "name", "code").
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

	var items []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// =========== LabTest Repository ===========

type labTestRepoPG struct{ pool *pgxpool.Pool }

func NewLabTestRepoPG(pool *pgxpool.Pool) LabTestRepository { return &labTestRepoPG{pool: pool} }

const labTestCols = baseCols + `, code, name, specimen_type`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var m LabTest
	err := row.Scan(&m.ID, &m.Status, &m.IsDeleted, &m.DeletedAt, &m.DeletedBy, &m.CreatedAt, &m.UpdatedAt,
		&m.Code, &m.Name, &m.SpecimenType)
	return &m, err
}

func (r *labTestRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *labTestRepoPG) Get(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	m, err := scanLabTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+labTestCols+` FROM lab_tests WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lab test", id.String())
	}
	return m, err
}

func (r *labTestRepoPG) GetAny(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	m, err := scanLabTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+labTestCols+` FROM lab_tests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lab test", id.String())
	}
	return m, err
}

func (r *labTestRepoPG) Create(ctx context.Context, m *LabTest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_tests (id, status, created_at, updated_at, code, name, specimen_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Status, m.CreatedAt, m.UpdatedAt, m.Code, m.Name, m.SpecimenType)
	return apperr.FromStorage("lab test", err)
}

func (r *labTestRepoPG) Update(ctx context.Context, m *LabTest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_tests SET status=$2, updated_at=$3, code=$4, name=$5, specimen_type=$6 WHERE id = $1`,
		m.ID, m.Status, m.UpdatedAt, m.Code, m.Name, m.SpecimenType)
	return apperr.FromStorage("lab test", err)
}

func (r *labTestRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_tests SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *labTestRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*LabTest, int, error) {
	qb := query.New("lab_tests", labTestCols, "is_deleted").
		Text(q, "name", "code").
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

	var items []*LabTest
	for rows.Next() {
		m, err := scanLabTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// =========== HospitalItemPrice Repository ===========

type priceRepoPG struct{ pool *pgxpool.Pool }

func NewPriceRepoPG(pool *pgxpool.Pool) PriceRepository { return &priceRepoPG{pool: pool} }

const priceCols = baseCols + `, hospital_id, item_kind, item_id, amount, available`

func scanPrice(row pgx.Row) (*HospitalItemPrice, error) {
	var p HospitalItemPrice
	err := row.Scan(&p.ID, &p.Status, &p.IsDeleted, &p.DeletedAt, &p.DeletedBy, &p.CreatedAt, &p.UpdatedAt,
		&p.HospitalID, &p.ItemKind, &p.ItemID, &p.Amount, &p.Available)
	return &p, err
}

func (r *priceRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *priceRepoPG) Get(ctx context.Context, id uuid.UUID) (*HospitalItemPrice, error) {
	p, err := scanPrice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+priceCols+` FROM hospital_item_prices WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("hospital item price", id.String())
	}
	return p, err
}

func (r *priceRepoPG) GetAny(ctx context.Context, id uuid.UUID) (*HospitalItemPrice, error) {
	p, err := scanPrice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+priceCols+` FROM hospital_item_prices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("hospital item price", id.String())
	}
	return p, err
}

func (r *priceRepoPG) Create(ctx context.Context, p *HospitalItemPrice) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital_item_prices (id, status, created_at, updated_at, hospital_id, item_kind, item_id, amount, available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Status, p.CreatedAt, p.UpdatedAt, p.HospitalID, p.ItemKind, p.ItemID, p.Amount, p.Available)
	return apperr.FromStorage("hospital item price", err)
}

func (r *priceRepoPG) Update(ctx context.Context, p *HospitalItemPrice) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospital_item_prices SET status=$2, updated_at=$3, hospital_id=$4, item_kind=$5, item_id=$6, amount=$7, available=$8
		WHERE id = $1`,
		p.ID, p.Status, p.UpdatedAt, p.HospitalID, p.ItemKind, p.ItemID, p.Amount, p.Available)
	return apperr.FromStorage("hospital item price", err)
}

func (r *priceRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospital_item_prices SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`, id, at, by)
	return err
}

func (r *priceRepoPG) FindByHospitalItem(ctx context.Context, hospitalID uuid.UUID, ref ItemRef) (*HospitalItemPrice, error) {
	p, err := scanPrice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+priceCols+` FROM hospital_item_prices
		WHERE hospital_id = $1 AND item_kind = $2 AND item_id = $3 AND is_deleted = FALSE`,
		hospitalID, ref.Kind, ref.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *priceRepoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*HospitalItemPrice, int, error) {
	qb := query.New("hospital_item_prices", priceCols, "is_deleted").
		Equals("hospital_id", hospitalID).
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

	var items []*HospitalItemPrice
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
