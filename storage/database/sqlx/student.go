package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

type studentRow struct {
	ID               string      `db:"id"`
	SchoolID         string      `db:"school_id"`
	Code             string      `db:"code"`
	Name             string      `db:"name"`
	Gender           string      `db:"gender"`
	BirthDate        null.Time   `db:"birth_date"`
	AcademicYear     string      `db:"academic_year"`
	Level            null.String `db:"level"`
	GroupID          null.String `db:"group_id"`
	Phone            null.String `db:"phone"`
	ParentProfession null.String `db:"parent_profession"`
	DiscountTier     string      `db:"discount_tier"`
	IsActive         bool        `db:"is_active"`
	RegistrationDate time.Time   `db:"registration_date"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func (row studentRow) model() student.Student {
	return student.Student{
		ID:               row.ID,
		SchoolID:         row.SchoolID,
		Code:             row.Code,
		Name:             row.Name,
		Gender:           row.Gender,
		BirthDate:        row.BirthDate,
		AcademicYear:     row.AcademicYear,
		Level:            row.Level.String,
		GroupID:          row.GroupID,
		Phone:            row.Phone.String,
		ParentProfession: row.ParentProfession.String,
		DiscountTier:     row.DiscountTier,
		IsActive:         row.IsActive,
		RegistrationDate: row.RegistrationDate,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

const studentColumns = `id, school_id, code, name, gender, birth_date, academic_year, level, group_id,
	phone, parent_profession, discount_tier, is_active, registration_date, created_at, updated_at`

var studentOrderFields = map[string]bool{"code": true, "name": true, "registration_date": true, "created_at": true}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO student (`+studentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		std.ID, std.SchoolID, std.Code, std.Name, std.Gender, std.BirthDate, std.AcademicYear, std.Level,
		std.GroupID, std.Phone, std.ParentProfession, std.DiscountTier, std.IsActive, std.RegistrationDate,
		std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "student_code_uix") {
			return student.Student{}, student.ErrCodeExists
		}
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM student WHERE `
	var arg interface{}
	switch {
	case filter.ID != "":
		query += `id = $1`
		arg = filter.ID
	case filter.Code != "":
		query += `code = $1`
		arg = filter.Code
	case filter.Name != "":
		query += `name ILIKE $1 ORDER BY code LIMIT 1`
		arg = contains(filter.Name)
	default:
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		return student.Student{}, trapNoRows(err, student.ErrNotFound, "getting student")
	}
	return row.model(), nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var cb condBuilder
	if filter != nil {
		if filter.SchoolID != "" {
			cb.where(`school_id = $%d`, filter.SchoolID)
		}
		if filter.Search != "" {
			cb.where(`(name ILIKE $%d OR code LIKE $%d)`, contains(filter.Search), contains(filter.Search))
		}
		if filter.Gender != "" {
			cb.where(`gender = $%d`, filter.Gender)
		}
		if filter.GroupID != "" {
			cb.where(`group_id = $%d`, filter.GroupID)
		}
		if filter.IsActive != nil {
			cb.where(`is_active = $%d`, *filter.IsActive)
		}
	}

	var rows []studentRow
	query := `SELECT ` + studentColumns + ` FROM student` + cb.clause() + orderBy(ordering, studentOrderFields, "code")
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	students := make([]student.Student, len(rows))
	for i, row := range rows {
		students[i] = row.model()
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, isActive *bool) (student.Student, error) {
	// the generated code is immutable and deliberately absent from the SET list
	res, err := repo.db.ExecContext(ctx, `
		UPDATE student
		SET name              = $2,
		    gender            = $3,
		    birth_date        = $4,
		    academic_year     = $5,
		    level             = $6,
		    group_id          = $7,
		    phone             = $8,
		    parent_profession = $9,
		    discount_tier     = $10,
		    is_active         = COALESCE($11, is_active),
		    updated_at        = $12
		WHERE id = $1`,
		std.ID, std.Name, std.Gender, std.BirthDate, std.AcademicYear, std.Level, std.GroupID,
		std.Phone, std.ParentProfession, std.DiscountTier, isActive, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, student.GetFilter{ID: std.ID})
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting students")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

// AdvanceAcademicYears moves every active student of the school one step
// along the progression table and stamps the school, in one transaction.
func (repo *studentRepository) AdvanceAcademicYears(ctx context.Context, schoolID string, advancedOn time.Time) (int, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var rows []struct {
		ID           string `db:"id"`
		AcademicYear string `db:"academic_year"`
	}
	err = tx.SelectContext(ctx, &rows,
		`SELECT id, academic_year FROM student WHERE school_id = $1 AND is_active FOR UPDATE`, schoolID)
	if err != nil {
		return 0, errors.Wrap(err, "loading students")
	}

	var count int
	for _, row := range rows {
		_, err = tx.ExecContext(ctx,
			`UPDATE student SET academic_year = $2, updated_at = $3 WHERE id = $1`,
			row.ID, student.NextAcademicYear(row.AcademicYear), advancedOn)
		if err != nil {
			return 0, errors.Wrap(err, "advancing student")
		}
		count++
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE school SET year_advanced_on = $2, updated_at = $2 WHERE id = $1`, schoolID, advancedOn)
	if err != nil {
		return 0, errors.Wrap(err, "stamping school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, school.ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing transaction")
	}
	return count, nil
}
