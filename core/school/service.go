package school

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("school not found")

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchoolByID(ctx context.Context, id string) (School, error)
		QuerySchools(ctx context.Context) ([]School, error)
		UpdateSchool(ctx context.Context, sch School, isActive *bool) (School, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewSchool) (School, error)
		GetByID(ctx context.Context, id string) (School, error)
		Query(ctx context.Context) ([]School, error)
		Update(ctx context.Context, id string, us UpdateSchool) (School, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		Name:                   ns.Name,
		SubscriptionStartYear:  ns.SubscriptionStartYear,
		SubscriptionStartMonth: ns.SubscriptionStartMonth,
		DiscountAmount:         ns.DiscountAmount,
		IsActive:               true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *service) Query(ctx context.Context) ([]School, error) {
	return svc.repo.QuerySchools(ctx)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSchool) (School, error) {
	orig, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}

	sch := orig
	if us.Name != "" {
		sch.Name = us.Name
	}
	if us.SubscriptionStartYear != 0 {
		sch.SubscriptionStartYear = us.SubscriptionStartYear
	}
	if us.SubscriptionStartMonth != 0 {
		sch.SubscriptionStartMonth = us.SubscriptionStartMonth
	}
	if us.DiscountAmount != nil {
		sch.DiscountAmount = *us.DiscountAmount
	}
	sch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, sch, us.IsActive)
}
