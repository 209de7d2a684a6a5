package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	ErrNotFound = errors.New("attendance record not found")

	NowFunc = time.Now // mockable
)

type (
	// QueryFilter applies AND operation on available fields.
	QueryFilter struct {
		SchoolID  string     `query:"school"`
		StudentID string     `query:"student"`
		GroupID   string     `query:"group"`
		DateFrom  *time.Time `query:"date_from"`
		DateTo    *time.Time `query:"date_to"`
	}

	Repository interface {
		// UpsertAttendance creates the record, or updates the existing one
		// for the same student and day.
		UpsertAttendance(ctx context.Context, att Attendance) (Attendance, error)
		FilterAttendances(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Attendance, error)
		DeleteAttendancesByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Record(ctx context.Context, na NewAttendance) (Attendance, error)
		RecordGroup(ctx context.Context, ga GroupAttendance) ([]Attendance, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Attendance, error)
		// WasPresent reports a student's status on a day; days without a
		// record count as present.
		WasPresent(ctx context.Context, schoolID, studentID string, date time.Time) (bool, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Record(ctx context.Context, na NewAttendance) (Attendance, error) {
	now := NowFunc().UTC()
	att := Attendance{
		SchoolID:  na.SchoolID,
		StudentID: na.StudentID,
		GroupID:   na.GroupID,
		Date:      truncateToDay(na.Date),
		Present:   na.Present,
		Note:      na.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.UpsertAttendance(ctx, att)
}

func (svc *service) RecordGroup(ctx context.Context, ga GroupAttendance) ([]Attendance, error) {
	recorded := make([]Attendance, 0, len(ga.Entries))
	for _, entry := range ga.Entries {
		att, err := svc.Record(ctx, NewAttendance{
			SchoolID:  ga.SchoolID,
			StudentID: entry.StudentID,
			GroupID:   ga.GroupID,
			Date:      ga.Date,
			Present:   entry.Present,
			Note:      entry.Note,
		})
		if err != nil {
			return recorded, errors.Wrapf(err, "recording attendance for student %s", entry.StudentID)
		}
		recorded = append(recorded, att)
	}
	return recorded, nil
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Attendance, error) {
	return svc.repo.FilterAttendances(ctx, filter, ordering)
}

func (svc *service) WasPresent(ctx context.Context, schoolID, studentID string, date time.Time) (bool, error) {
	day := truncateToDay(date)
	atts, err := svc.repo.FilterAttendances(ctx, &QueryFilter{
		SchoolID:  schoolID,
		StudentID: studentID,
		DateFrom:  &day,
		DateTo:    &day,
	}, nil)
	if err != nil {
		return false, err
	}
	if len(atts) == 0 {
		return true, nil // no record means present
	}
	return atts[0].Present, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAttendancesByID(ctx, ids...)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
