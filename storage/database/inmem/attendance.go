package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// one record per (student, date)
	for _, existing := range repo.db.attendances {
		if existing.StudentID == att.StudentID && existing.Date.Equal(att.Date) {
			existing.GroupID = att.GroupID
			existing.Present = att.Present
			existing.Note = att.Note
			existing.UpdatedAt = att.UpdatedAt
			return *existing, nil
		}
	}
	att.ID = uuid.New().String()
	repo.db.attendances[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) FilterAttendances(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	atts := make([]attendance.Attendance, 0, len(repo.db.attendances))
	for _, att := range repo.db.attendances {
		if filter != nil {
			if filter.SchoolID != "" && att.SchoolID != filter.SchoolID {
				continue
			}
			if filter.StudentID != "" && att.StudentID != filter.StudentID {
				continue
			}
			if filter.GroupID != "" && att.GroupID != filter.GroupID {
				continue
			}
			if filter.DateFrom != nil && att.Date.Before(*filter.DateFrom) {
				continue
			}
			if filter.DateTo != nil && att.Date.After(*filter.DateTo) {
				continue
			}
		}
		atts = append(atts, *att)
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].Date.Before(atts[j].Date) })
	return atts, nil
}

func (repo *attendanceRepository) DeleteAttendancesByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.attendances, id)
	}
	return nil
}
