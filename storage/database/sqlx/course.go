package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID          string          `db:"id"`
	SchoolID    string          `db:"school_id"`
	Name        string          `db:"name"`
	Price       decimal.Decimal `db:"price"`
	Description null.String     `db:"description"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (row courseRow) model() course.Course {
	return course.Course{
		ID:          row.ID,
		SchoolID:    row.SchoolID,
		Name:        row.Name,
		Price:       row.Price,
		Description: row.Description.String,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type classGroupRow struct {
	ID        string      `db:"id"`
	SchoolID  string      `db:"school_id"`
	Name      string      `db:"name"`
	CourseID  string      `db:"course_id"`
	TeacherID null.String `db:"teacher_id"`
	StartTime string      `db:"start_time"`
	EndTime   string      `db:"end_time"`
	IsActive  bool        `db:"is_active"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (row classGroupRow) model() course.ClassGroup {
	return course.ClassGroup{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		Name:      row.Name,
		CourseID:  row.CourseID,
		TeacherID: row.TeacherID.String,
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const (
	courseColumns     = `id, school_id, name, price, description, is_active, created_at, updated_at`
	classGroupColumns = `id, school_id, name, course_id, teacher_id, start_time, end_time, is_active, created_at, updated_at`
)

var (
	courseOrderFields     = map[string]bool{"name": true, "price": true, "created_at": true}
	classGroupOrderFields = map[string]bool{"name": true, "start_time": true, "created_at": true}
)

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO course (`+courseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		crs.ID, crs.SchoolID, crs.Name, crs.Price, crs.Description, crs.IsActive, crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM course WHERE id = $1`, id)
	if err != nil {
		return course.Course{}, trapNoRows(err, course.ErrNotFound, "getting course")
	}
	return row.model(), nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	var cb condBuilder
	if filter != nil {
		if filter.SchoolID != "" {
			cb.where(`school_id = $%d`, filter.SchoolID)
		}
		if filter.Search != "" {
			cb.where(`name ILIKE $%d`, contains(filter.Search))
		}
		if filter.IsActive != nil {
			cb.where(`is_active = $%d`, *filter.IsActive)
		}
	}

	var rows []courseRow
	query := `SELECT ` + courseColumns + ` FROM course` + cb.clause() + orderBy(ordering, courseOrderFields, "name")
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	courses := make([]course.Course, len(rows))
	for i, row := range rows {
		courses[i] = row.model()
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, isActive *bool) (course.Course, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE course
		SET name        = $2,
		    price       = $3,
		    description = $4,
		    is_active   = COALESCE($5, is_active),
		    updated_at  = $6
		WHERE id = $1`,
		crs.ID, crs.Name, crs.Price, crs.Description, isActive, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM course WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo *courseRepository) CreateClassGroup(ctx context.Context, grp course.ClassGroup) (course.ClassGroup, error) {
	grp.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO class_group (`+classGroupColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		grp.ID, grp.SchoolID, grp.Name, grp.CourseID, null.NewString(grp.TeacherID, grp.TeacherID != ""),
		grp.StartTime, grp.EndTime, grp.IsActive, grp.CreatedAt, grp.UpdatedAt,
	)
	if err != nil {
		return course.ClassGroup{}, errors.Wrap(err, "creating class group")
	}
	return grp, nil
}

// GetClassGroupByID returns the group with its Course populated.
func (repo *courseRepository) GetClassGroupByID(ctx context.Context, id string) (course.ClassGroup, error) {
	var row classGroupRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+classGroupColumns+` FROM class_group WHERE id = $1`, id)
	if err != nil {
		return course.ClassGroup{}, trapNoRows(err, course.ErrGroupNotFound, "getting class group")
	}

	grp := row.model()
	crs, err := repo.GetCourseByID(ctx, grp.CourseID)
	if err != nil {
		return course.ClassGroup{}, err
	}
	grp.Course = &crs
	return grp, nil
}

func (repo *courseRepository) FilterClassGroups(ctx context.Context, filter *course.GroupQueryFilter, ordering []core.DBOrdering) ([]course.ClassGroup, error) {
	var cb condBuilder
	if filter != nil {
		if filter.SchoolID != "" {
			cb.where(`school_id = $%d`, filter.SchoolID)
		}
		if filter.Search != "" {
			cb.where(`name ILIKE $%d`, contains(filter.Search))
		}
		if filter.CourseID != "" {
			cb.where(`course_id = $%d`, filter.CourseID)
		}
		if filter.TeacherID != "" {
			cb.where(`teacher_id = $%d`, filter.TeacherID)
		}
		if filter.IsActive != nil {
			cb.where(`is_active = $%d`, *filter.IsActive)
		}
	}

	var rows []classGroupRow
	query := `SELECT ` + classGroupColumns + ` FROM class_group` + cb.clause() + orderBy(ordering, classGroupOrderFields, "name")
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering class groups")
	}
	groups := make([]course.ClassGroup, len(rows))
	for i, row := range rows {
		groups[i] = row.model()
	}
	return groups, nil
}

func (repo *courseRepository) UpdateClassGroup(ctx context.Context, grp course.ClassGroup, isActive *bool) (course.ClassGroup, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE class_group
		SET name       = $2,
		    course_id  = $3,
		    teacher_id = $4,
		    start_time = $5,
		    end_time   = $6,
		    is_active  = COALESCE($7, is_active),
		    updated_at = $8
		WHERE id = $1`,
		grp.ID, grp.Name, grp.CourseID, null.NewString(grp.TeacherID, grp.TeacherID != ""),
		grp.StartTime, grp.EndTime, isActive, grp.UpdatedAt,
	)
	if err != nil {
		return course.ClassGroup{}, errors.Wrap(err, "updating class group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ClassGroup{}, course.ErrGroupNotFound
	}
	return repo.GetClassGroupByID(ctx, grp.ID)
}

func (repo *courseRepository) DeleteClassGroupsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM class_group WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting class groups")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting class groups")
	}
	return nil
}
