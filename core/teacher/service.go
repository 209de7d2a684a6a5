package teacher

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = errors.New("teacher not found")

type (
	// QueryFilter applies AND operation on available fields.
	// Search does a case-insensitive match on one of Name or IDNumber.
	QueryFilter struct {
		SchoolID string `query:"school"`
		Search   string `query:"search"`
		IsActive *bool  `query:"is_active"`
	}

	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		FilterTeachers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher, isActive *bool) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		GetByID(ctx context.Context, id string) (Teacher, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Teacher, error)
		Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error)
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

func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	tch := Teacher{
		SchoolID:         nt.SchoolID,
		Name:             nt.Name,
		IDNumber:         nt.IDNumber,
		Phone:            nt.Phone,
		Email:            nt.Email,
		Gender:           nt.Gender,
		MaritalStatus:    nt.MaritalStatus,
		BirthDate:        nt.BirthDate,
		Qualification:    nt.Qualification,
		Description:      nt.Description,
		IsActive:         true,
		RegistrationDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Teacher, error) {
	return svc.repo.FilterTeachers(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	orig, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}

	tch := orig
	if ut.Name != "" {
		tch.Name = ut.Name
	}
	if ut.IDNumber != "" {
		tch.IDNumber = ut.IDNumber
	}
	if ut.Phone != "" {
		tch.Phone = ut.Phone
	}
	if ut.Email != "" {
		tch.Email = ut.Email
	}
	if ut.Gender != "" {
		tch.Gender = ut.Gender
	}
	if ut.MaritalStatus != "" {
		tch.MaritalStatus = ut.MaritalStatus
	}
	if ut.BirthDate.Valid {
		tch.BirthDate = ut.BirthDate
	}
	if ut.Qualification != "" {
		tch.Qualification = ut.Qualification
	}
	if ut.Description != "" {
		tch.Description = ut.Description
	}
	tch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, tch, ut.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTeachersByID(ctx, ids...)
}
