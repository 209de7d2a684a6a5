package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

type attendanceRow struct {
	ID        string      `db:"id"`
	SchoolID  string      `db:"school_id"`
	StudentID string      `db:"student_id"`
	GroupID   null.String `db:"group_id"`
	Date      time.Time   `db:"date"`
	Present   bool        `db:"present"`
	Note      null.String `db:"note"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (row attendanceRow) model() attendance.Attendance {
	return attendance.Attendance{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		StudentID: row.StudentID,
		GroupID:   row.GroupID.String,
		Date:      row.Date,
		Present:   row.Present,
		Note:      row.Note.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const attendanceColumns = `id, school_id, student_id, group_id, date, present, note, created_at, updated_at`

var attendanceOrderFields = map[string]bool{"date": true, "created_at": true}

// UpsertAttendance creates the record, or updates the existing one for
// the same student and day; the (student_id, date) index backs the upsert.
func (repo *attendanceRepository) UpsertAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	att.ID = uuid.New().String()
	var row attendanceRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (student_id, date) DO UPDATE
			SET group_id   = EXCLUDED.group_id,
			    present    = EXCLUDED.present,
			    note       = EXCLUDED.note,
			    updated_at = EXCLUDED.updated_at
		RETURNING `+attendanceColumns,
		att.ID, att.SchoolID, att.StudentID, null.NewString(att.GroupID, att.GroupID != ""),
		att.Date, att.Present, att.Note, att.CreatedAt, att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "upserting attendance")
	}
	return row.model(), nil
}

func (repo *attendanceRepository) FilterAttendances(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Attendance, error) {
	var cb condBuilder
	if filter != nil {
		if filter.SchoolID != "" {
			cb.where(`school_id = $%d`, filter.SchoolID)
		}
		if filter.StudentID != "" {
			cb.where(`student_id = $%d`, filter.StudentID)
		}
		if filter.GroupID != "" {
			cb.where(`group_id = $%d`, filter.GroupID)
		}
		if filter.DateFrom != nil {
			cb.where(`date >= $%d`, *filter.DateFrom)
		}
		if filter.DateTo != nil {
			cb.where(`date <= $%d`, *filter.DateTo)
		}
	}

	var rows []attendanceRow
	query := `SELECT ` + attendanceColumns + ` FROM attendance` + cb.clause() + orderBy(ordering, attendanceOrderFields, "date")
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering attendances")
	}
	atts := make([]attendance.Attendance, len(rows))
	for i, row := range rows {
		atts[i] = row.model()
	}
	return atts, nil
}

func (repo *attendanceRepository) DeleteAttendancesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM attendance WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting attendances")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting attendances")
	}
	return nil
}
