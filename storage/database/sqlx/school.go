package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

type schoolRow struct {
	ID                     string          `db:"id"`
	Name                   string          `db:"name"`
	SubscriptionStartYear  int             `db:"subscription_start_year"`
	SubscriptionStartMonth int             `db:"subscription_start_month"`
	DiscountAmount         decimal.Decimal `db:"discount_amount"`
	YearAdvancedOn         null.Time       `db:"year_advanced_on"`
	IsActive               bool            `db:"is_active"`
	CreatedAt              time.Time       `db:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at"`
}

func (row schoolRow) model() school.School {
	return school.School{
		ID:                     row.ID,
		Name:                   row.Name,
		SubscriptionStartYear:  row.SubscriptionStartYear,
		SubscriptionStartMonth: row.SubscriptionStartMonth,
		DiscountAmount:         row.DiscountAmount,
		YearAdvancedOn:         row.YearAdvancedOn.Ptr(),
		IsActive:               row.IsActive,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}
}

const schoolColumns = `id, name, subscription_start_year, subscription_start_month, discount_amount,
	year_advanced_on, is_active, created_at, updated_at`

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO school (`+schoolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sch.ID, sch.Name, sch.SubscriptionStartYear, sch.SubscriptionStartMonth, sch.DiscountAmount,
		null.TimeFromPtr(sch.YearAdvancedOn), sch.IsActive, sch.CreatedAt, sch.UpdatedAt,
	)
	if err != nil {
		return school.School{}, errors.Wrap(err, "creating school")
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	var row schoolRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+schoolColumns+` FROM school WHERE id = $1`, id)
	if err != nil {
		return school.School{}, trapNoRows(err, school.ErrNotFound, "getting school")
	}
	return row.model(), nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	var rows []schoolRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT `+schoolColumns+` FROM school ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, len(rows))
	for i, row := range rows {
		schools[i] = row.model()
	}
	return schools, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School, isActive *bool) (school.School, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE school
		SET name                     = $2,
		    subscription_start_year  = $3,
		    subscription_start_month = $4,
		    discount_amount          = $5,
		    year_advanced_on         = $6,
		    is_active                = COALESCE($7, is_active),
		    updated_at               = $8
		WHERE id = $1`,
		sch.ID, sch.Name, sch.SubscriptionStartYear, sch.SubscriptionStartMonth, sch.DiscountAmount,
		null.TimeFromPtr(sch.YearAdvancedOn), isActive, sch.UpdatedAt,
	)
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.School{}, school.ErrNotFound
	}
	return repo.GetSchoolByID(ctx, sch.ID)
}
