package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.students {
		if existing.Code == std.Code {
			return student.Student{}, student.ErrCodeExists
		}
	}
	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if std, ok := repo.db.students[filter.ID]; ok {
			return *std, nil
		}
		return student.Student{}, student.ErrNotFound
	}
	for _, std := range repo.db.students {
		if filter.Code != "" {
			if std.Code == filter.Code {
				return *std, nil
			}
			continue
		}
		if filter.Name != "" && strings.Contains(strings.ToLower(std.Name), strings.ToLower(filter.Name)) {
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		if filter != nil {
			if filter.SchoolID != "" && std.SchoolID != filter.SchoolID {
				continue
			}
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(std.Name), search) && !strings.Contains(std.Code, filter.Search) {
					continue
				}
			}
			if filter.Gender != "" && std.Gender != filter.Gender {
				continue
			}
			if filter.GroupID != "" && std.GroupID.String != filter.GroupID {
				continue
			}
			if filter.IsActive != nil && std.IsActive != *filter.IsActive {
				continue
			}
		}
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Code < students[j].Code })
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, isActive *bool) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	code := orig.Code // immutable
	*orig = std
	orig.Code = code
	if isActive != nil {
		orig.IsActive = *isActive
	}
	return *orig, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.students, id)
	}
	return nil
}

func (repo *studentRepository) AdvanceAcademicYears(ctx context.Context, schoolID string, advancedOn time.Time) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sch, ok := repo.db.schools[schoolID]
	if !ok {
		return 0, school.ErrNotFound
	}

	var count int
	for _, std := range repo.db.students {
		if std.SchoolID != schoolID || !std.IsActive {
			continue
		}
		std.AcademicYear = student.NextAcademicYear(std.AcademicYear)
		std.UpdatedAt = advancedOn
		count++
	}
	sch.YearAdvancedOn = &advancedOn
	return count, nil
}
