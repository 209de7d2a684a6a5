package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teacher"
)

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

type teacherRow struct {
	ID               string      `db:"id"`
	SchoolID         string      `db:"school_id"`
	Name             string      `db:"name"`
	IDNumber         null.String `db:"id_number"`
	Phone            null.String `db:"phone"`
	Email            null.String `db:"email"`
	Gender           null.String `db:"gender"`
	MaritalStatus    null.String `db:"marital_status"`
	BirthDate        null.Time   `db:"birth_date"`
	Qualification    null.String `db:"qualification"`
	Description      null.String `db:"description"`
	IsActive         bool        `db:"is_active"`
	RegistrationDate time.Time   `db:"registration_date"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func (row teacherRow) model() teacher.Teacher {
	return teacher.Teacher{
		ID:               row.ID,
		SchoolID:         row.SchoolID,
		Name:             row.Name,
		IDNumber:         row.IDNumber.String,
		Phone:            row.Phone.String,
		Email:            row.Email.String,
		Gender:           row.Gender.String,
		MaritalStatus:    row.MaritalStatus.String,
		BirthDate:        row.BirthDate,
		Qualification:    row.Qualification.String,
		Description:      row.Description.String,
		IsActive:         row.IsActive,
		RegistrationDate: row.RegistrationDate,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

const teacherColumns = `id, school_id, name, id_number, phone, email, gender, marital_status,
	birth_date, qualification, description, is_active, registration_date, created_at, updated_at`

var teacherOrderFields = map[string]bool{"name": true, "registration_date": true, "created_at": true}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	tch.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO teacher (`+teacherColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		tch.ID, tch.SchoolID, tch.Name, tch.IDNumber, tch.Phone, tch.Email, tch.Gender, tch.MaritalStatus,
		tch.BirthDate, tch.Qualification, tch.Description, tch.IsActive, tch.RegistrationDate, tch.CreatedAt, tch.UpdatedAt,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+teacherColumns+` FROM teacher WHERE id = $1`, id)
	if err != nil {
		return teacher.Teacher{}, trapNoRows(err, teacher.ErrNotFound, "getting teacher")
	}
	return row.model(), nil
}

func (repo *teacherRepository) FilterTeachers(ctx context.Context, filter *teacher.QueryFilter, ordering []core.DBOrdering) ([]teacher.Teacher, error) {
	var cb condBuilder
	if filter != nil {
		if filter.SchoolID != "" {
			cb.where(`school_id = $%d`, filter.SchoolID)
		}
		if filter.Search != "" {
			cb.where(`(name ILIKE $%d OR id_number ILIKE $%d)`, contains(filter.Search), contains(filter.Search))
		}
		if filter.IsActive != nil {
			cb.where(`is_active = $%d`, *filter.IsActive)
		}
	}

	var rows []teacherRow
	query := `SELECT ` + teacherColumns + ` FROM teacher` + cb.clause() + orderBy(ordering, teacherOrderFields, "name")
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering teachers")
	}
	teachers := make([]teacher.Teacher, len(rows))
	for i, row := range rows {
		teachers[i] = row.model()
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, isActive *bool) (teacher.Teacher, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE teacher
		SET name           = $2,
		    id_number      = $3,
		    phone          = $4,
		    email          = $5,
		    gender         = $6,
		    marital_status = $7,
		    birth_date     = $8,
		    qualification  = $9,
		    description    = $10,
		    is_active      = COALESCE($11, is_active),
		    updated_at     = $12
		WHERE id = $1`,
		tch.ID, tch.Name, tch.IDNumber, tch.Phone, tch.Email, tch.Gender, tch.MaritalStatus,
		tch.BirthDate, tch.Qualification, tch.Description, isActive, tch.UpdatedAt,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacherByID(ctx, tch.ID)
}

func (repo *teacherRepository) DeleteTeachersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM teacher WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	return nil
}
