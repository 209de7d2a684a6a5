package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound      = errors.New("course not found")
	ErrGroupNotFound = errors.New("class group not found")
)

type (
	// QueryFilter applies AND operation on available fields.
	QueryFilter struct {
		SchoolID string `query:"school"`
		Search   string `query:"search"`
		IsActive *bool  `query:"is_active"`
	}

	// GroupQueryFilter applies AND operation on available fields.
	GroupQueryFilter struct {
		SchoolID  string `query:"school"`
		Search    string `query:"search"`
		CourseID  string `query:"course"`
		TeacherID string `query:"teacher"`
		IsActive  *bool  `query:"is_active"`
	}

	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		FilterCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course, isActive *bool) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error

		CreateClassGroup(ctx context.Context, grp ClassGroup) (ClassGroup, error)
		// GetClassGroupByID returns the group with its Course populated.
		GetClassGroupByID(ctx context.Context, id string) (ClassGroup, error)
		FilterClassGroups(ctx context.Context, filter *GroupQueryFilter, ordering []core.DBOrdering) ([]ClassGroup, error)
		UpdateClassGroup(ctx context.Context, grp ClassGroup, isActive *bool) (ClassGroup, error)
		DeleteClassGroupsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, ids ...string) error

		CreateGroup(ctx context.Context, ng NewClassGroup) (ClassGroup, error)
		GetGroupByID(ctx context.Context, id string) (ClassGroup, error)
		FilterGroups(ctx context.Context, filter *GroupQueryFilter, ordering []core.DBOrdering) ([]ClassGroup, error)
		UpdateGroup(ctx context.Context, id string, ug UpdateClassGroup) (ClassGroup, error)
		DeleteGroups(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		SchoolID:    nc.SchoolID,
		Name:        nc.Name,
		Price:       nc.Price,
		Description: nc.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.FilterCourses(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}

	crs := orig
	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.Price != nil {
		crs.Price = *uc.Price
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs, uc.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

func (svc *service) CreateGroup(ctx context.Context, ng NewClassGroup) (ClassGroup, error) {
	if _, err := svc.repo.GetCourseByID(ctx, ng.CourseID); err != nil {
		return ClassGroup{}, err
	}

	now := time.Now().UTC()
	grp := ClassGroup{
		SchoolID:  ng.SchoolID,
		Name:      ng.Name,
		CourseID:  ng.CourseID,
		TeacherID: ng.TeacherID,
		StartTime: ng.StartTime,
		EndTime:   ng.EndTime,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClassGroup(ctx, grp)
}

func (svc *service) GetGroupByID(ctx context.Context, id string) (ClassGroup, error) {
	return svc.repo.GetClassGroupByID(ctx, id)
}

func (svc *service) FilterGroups(ctx context.Context, filter *GroupQueryFilter, ordering []core.DBOrdering) ([]ClassGroup, error) {
	return svc.repo.FilterClassGroups(ctx, filter, ordering)
}

func (svc *service) UpdateGroup(ctx context.Context, id string, ug UpdateClassGroup) (ClassGroup, error) {
	orig, err := svc.repo.GetClassGroupByID(ctx, id)
	if err != nil {
		return ClassGroup{}, err
	}

	grp := orig
	if ug.Name != "" {
		grp.Name = ug.Name
	}
	if ug.CourseID != "" {
		if _, err = svc.repo.GetCourseByID(ctx, ug.CourseID); err != nil {
			return ClassGroup{}, err
		}
		grp.CourseID = ug.CourseID
	}
	if ug.TeacherID != "" {
		grp.TeacherID = ug.TeacherID
	}
	if ug.StartTime != "" {
		grp.StartTime = ug.StartTime
	}
	if ug.EndTime != "" {
		grp.EndTime = ug.EndTime
	}
	if err = checkTimeWindow(grp.StartTime, grp.EndTime); err != nil {
		return ClassGroup{}, err
	}
	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClassGroup(ctx, grp, ug.IsActive)
}

func (svc *service) DeleteGroups(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassGroupsByID(ctx, ids...)
}
