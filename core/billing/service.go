package billing

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
)

var (
	// errors
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrDuplicateInvoice  = errors.New("an invoice already exists for this student and period")
	ErrUnassignedStudent = errors.New("student is not assigned to a class group")
	ErrExemptStudent     = errors.New("student is fully exempt and cannot be invoiced")
	ErrAmountMismatch    = errors.New("amount does not match the expected amount")

	NowFunc = time.Now // mockable
)

type (
	// QueryFilter applies AND operation on available fields.
	QueryFilter struct {
		SchoolID  string     `query:"school"`
		StudentID string     `query:"student"`
		Month     int        `query:"month"`
		Year      int        `query:"year"`
		DateFrom  *time.Time `query:"date_from"`
		DateTo    *time.Time `query:"date_to"`
	}

	Repository interface {
		// CreateInvoiceWithStatus persists the invoice and its payment
		// status in one transaction; both are written or neither is.
		// Returns ErrDuplicateInvoice when an invoice already exists for
		// the same (student, month, year).
		CreateInvoiceWithStatus(ctx context.Context, inv Invoice, status PaymentStatus) (Invoice, error)
		GetInvoiceByID(ctx context.Context, id string) (Invoice, error)
		FilterInvoices(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		FilterPaymentStatuses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]PaymentStatus, error)
	}

	Service interface {
		// CreateInvoice records a payment for the student resolved from
		// ni.StudentCode (or ni.StudentName). The amount must equal the
		// expected amount for the student's course and discount tier.
		CreateInvoice(ctx context.Context, ni NewInvoice) (Invoice, error)
		GetInvoiceByID(ctx context.Context, id string) (Invoice, error)
		FilterInvoices(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		FilterPaymentStatuses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]PaymentStatus, error)

		// ExpectedAmountFor computes the amount due per period for a student.
		ExpectedAmountFor(ctx context.Context, studentID string) (decimal.Decimal, error)

		// MissingMonths lists the unpaid "YYYY-MM" periods from the
		// school's subscription start through the current month. Fully
		// exempt students always yield an empty list.
		MissingMonths(ctx context.Context, studentID string) ([]string, error)
	}

	service struct {
		repo        Repository
		schoolRepo  school.Repository
		studentRepo student.Repository
		courseRepo  course.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schoolRepo school.Repository, studentRepo student.Repository, courseRepo course.Repository) Service {
	return &service{
		repo:        repo,
		schoolRepo:  schoolRepo,
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
	}
}

// ExpectedAmount computes the amount due per period: the full course
// price for tier "none", the price minus the school's flat discount for
// tier "discount", and zero for fully exempt students.
func ExpectedAmount(price, schoolDiscount decimal.Decimal, tier string) decimal.Decimal {
	switch tier {
	case student.DiscountFull:
		return decimal.Zero
	case student.DiscountPart:
		return price.Sub(schoolDiscount)
	default:
		return price
	}
}

func (svc *service) CreateInvoice(ctx context.Context, ni NewInvoice) (Invoice, error) {
	std, err := svc.studentRepo.GetStudent(ctx, student.GetFilter{Code: ni.StudentCode, Name: ni.StudentName})
	if err != nil {
		return Invoice{}, err
	}
	if std.IsExempt() {
		return Invoice{}, ErrExemptStudent
	}

	expected, err := svc.expectedAmount(ctx, std)
	if err != nil {
		return Invoice{}, err
	}
	if !ni.Amount.Equal(expected) {
		return Invoice{}, errors.Wrapf(ErrAmountMismatch, "expected %s", expected)
	}

	now := NowFunc().UTC()
	date := now
	if ni.Date != nil {
		date = ni.Date.UTC()
	}
	inv := Invoice{
		SchoolID:  std.SchoolID,
		StudentID: std.ID,
		Amount:    ni.Amount,
		Month:     time.Month(ni.Month),
		Year:      ni.Year,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	status := PaymentStatus{
		SchoolID:  std.SchoolID,
		StudentID: std.ID,
		Month:     inv.Month,
		Year:      inv.Year,
		IsPaid:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateInvoiceWithStatus(ctx, inv, status)
}

func (svc *service) GetInvoiceByID(ctx context.Context, id string) (Invoice, error) {
	return svc.repo.GetInvoiceByID(ctx, id)
}

func (svc *service) FilterInvoices(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error) {
	return svc.repo.FilterInvoices(ctx, filter, ordering)
}

func (svc *service) FilterPaymentStatuses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]PaymentStatus, error) {
	return svc.repo.FilterPaymentStatuses(ctx, filter, ordering)
}

func (svc *service) ExpectedAmountFor(ctx context.Context, studentID string) (decimal.Decimal, error) {
	std, err := svc.studentRepo.GetStudent(ctx, student.GetFilter{ID: studentID})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return svc.expectedAmount(ctx, std)
}

func (svc *service) MissingMonths(ctx context.Context, studentID string) ([]string, error) {
	std, err := svc.studentRepo.GetStudent(ctx, student.GetFilter{ID: studentID})
	if err != nil {
		return nil, err
	}
	if std.IsExempt() {
		return []string{}, nil
	}

	sch, err := svc.schoolRepo.GetSchoolByID(ctx, std.SchoolID)
	if err != nil {
		return nil, err
	}

	statuses, err := svc.repo.FilterPaymentStatuses(ctx, &QueryFilter{SchoolID: std.SchoolID, StudentID: std.ID}, nil)
	if err != nil {
		return nil, err
	}
	paid := make([]Period, 0, len(statuses))
	for _, status := range statuses {
		if status.IsPaid {
			paid = append(paid, status.Period())
		}
	}

	start := Period{Year: sch.SubscriptionStartYear, Month: time.Month(sch.SubscriptionStartMonth)}
	missing := MissingPeriods(start, paid, NowFunc().UTC())

	formatted := make([]string, len(missing))
	for i, p := range missing {
		formatted[i] = p.String()
	}
	return formatted, nil
}

func (svc *service) expectedAmount(ctx context.Context, std student.Student) (decimal.Decimal, error) {
	if std.IsExempt() {
		return decimal.Zero, nil
	}
	if !std.IsAssigned() {
		return decimal.Decimal{}, ErrUnassignedStudent
	}

	grp, err := svc.courseRepo.GetClassGroupByID(ctx, std.GroupID.String)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if grp.Course == nil {
		return decimal.Decimal{}, errors.Errorf("class group %s has no course loaded", grp.ID)
	}

	sch, err := svc.schoolRepo.GetSchoolByID(ctx, std.SchoolID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ExpectedAmount(grp.Course.Price, sch.DiscountAmount, std.DiscountTier), nil
}
