package report

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/school"
)

// ErrInconsistentLedger signals that the ledger holds more paid rows
// than enrolled students for a group; reported rather than clamped.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: paid count exceeds enrollment")

type (
	Repository interface {
		// GroupTallies scans the ledger and returns raw counts per class
		// group of the school for the target period.
		GroupTallies(ctx context.Context, schoolID string, period billing.Period) ([]GroupTally, error)

		// PaymentItems returns one row per paid payment status of the
		// school, joined with its invoice and student, optionally
		// restricted to invoices dated within [from, to].
		PaymentItems(ctx context.Context, schoolID string, from, to *time.Time) ([]PaymentItem, error)
	}

	Service interface {
		// GroupSummary computes the per-group rollup for a billing period,
		// ordered by group name.
		GroupSummary(ctx context.Context, schoolID string, period billing.Period) ([]GroupSummary, error)

		// PaymentSummary lists itemized payments for export.
		PaymentSummary(ctx context.Context, schoolID string, from, to *time.Time) ([]PaymentItem, error)
	}

	service struct {
		repo       Repository
		schoolRepo school.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schoolRepo school.Repository) Service {
	return &service{
		repo:       repo,
		schoolRepo: schoolRepo,
	}
}

func (svc *service) GroupSummary(ctx context.Context, schoolID string, period billing.Period) ([]GroupSummary, error) {
	sch, err := svc.schoolRepo.GetSchoolByID(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	tallies, err := svc.repo.GroupTallies(ctx, schoolID, period)
	if err != nil {
		return nil, err
	}

	summaries := make([]GroupSummary, 0, len(tallies))
	for _, t := range tallies {
		sum, err := summarize(t, sch.DiscountAmount)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].GroupName < summaries[j].GroupName })
	return summaries, nil
}

func (svc *service) PaymentSummary(ctx context.Context, schoolID string, from, to *time.Time) ([]PaymentItem, error) {
	return svc.repo.PaymentItems(ctx, schoolID, from, to)
}

func summarize(t GroupTally, schoolDiscount decimal.Decimal) (GroupSummary, error) {
	notPaid := t.TotalStudents - (t.PaidNoneCurrent + t.PaidDiscountCurrent + t.FullDiscount)
	if notPaid < 0 {
		return GroupSummary{}, errors.Wrapf(ErrInconsistentLedger, "group %s", t.GroupID)
	}

	discounted := t.CoursePrice.Sub(schoolDiscount)
	currentTotal := t.CoursePrice.Mul(decimal.NewFromInt(int64(t.PaidNoneCurrent))).
		Add(discounted.Mul(decimal.NewFromInt(int64(t.PaidDiscountCurrent))))
	otherTotal := t.CoursePrice.Mul(decimal.NewFromInt(int64(t.PaidNoneOther))).
		Add(discounted.Mul(decimal.NewFromInt(int64(t.PaidDiscountOther))))

	return GroupSummary{
		GroupID:              t.GroupID,
		GroupName:            t.GroupName,
		CourseName:           t.CourseName,
		CoursePrice:          t.CoursePrice,
		TotalStudents:        t.TotalStudents,
		PaidCurrent:          t.PaidNoneCurrent,
		DiscountPaidCurrent:  t.PaidDiscountCurrent,
		FullDiscount:         t.FullDiscount,
		NotPaid:              notPaid,
		PaidPrevious:         t.PaidNoneOther,
		DiscountPaidPrevious: t.PaidDiscountOther,
		CurrentTotal:         currentTotal,
		OtherTotal:           otherTotal,
		FinalTotal:           currentTotal.Add(otherTotal),
	}, nil
}
