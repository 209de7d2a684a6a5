package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if filter != nil {
			if filter.SchoolID != "" && crs.SchoolID != filter.SchoolID {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(crs.Name), strings.ToLower(filter.Search)) {
				continue
			}
			if filter.IsActive != nil && crs.IsActive != *filter.IsActive {
				continue
			}
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, isActive *bool) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	*orig = crs
	if isActive != nil {
		orig.IsActive = *isActive
	}
	return *orig, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}

func (repo *courseRepository) CreateClassGroup(ctx context.Context, grp course.ClassGroup) (course.ClassGroup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	grp.ID = uuid.New().String()
	grp.Course = nil
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *courseRepository) GetClassGroupByID(ctx context.Context, id string) (course.ClassGroup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grp, ok := repo.db.groups[id]
	if !ok {
		return course.ClassGroup{}, course.ErrGroupNotFound
	}
	out := *grp
	if crs, ok := repo.db.courses[grp.CourseID]; ok {
		c := *crs
		out.Course = &c
	}
	return out, nil
}

func (repo *courseRepository) FilterClassGroups(ctx context.Context, filter *course.GroupQueryFilter, ordering []core.DBOrdering) ([]course.ClassGroup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	groups := make([]course.ClassGroup, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		if filter != nil {
			if filter.SchoolID != "" && grp.SchoolID != filter.SchoolID {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(grp.Name), strings.ToLower(filter.Search)) {
				continue
			}
			if filter.CourseID != "" && grp.CourseID != filter.CourseID {
				continue
			}
			if filter.TeacherID != "" && grp.TeacherID != filter.TeacherID {
				continue
			}
			if filter.IsActive != nil && grp.IsActive != *filter.IsActive {
				continue
			}
		}
		out := *grp
		if crs, ok := repo.db.courses[grp.CourseID]; ok {
			c := *crs
			out.Course = &c
		}
		groups = append(groups, out)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo *courseRepository) UpdateClassGroup(ctx context.Context, grp course.ClassGroup, isActive *bool) (course.ClassGroup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.groups[grp.ID]
	if !ok {
		return course.ClassGroup{}, course.ErrGroupNotFound
	}
	grp.Course = nil
	*orig = grp
	if isActive != nil {
		orig.IsActive = *isActive
	}
	return *orig, nil
}

func (repo *courseRepository) DeleteClassGroupsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.groups, id)
	}
	return nil
}
