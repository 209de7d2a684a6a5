package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

type billingFixture struct {
	db  *inmemdb.DB
	svc billing.Service

	school school.School
	course course.Course
	group  course.ClassGroup
}

func newBillingFixture(t *testing.T, price, discount string) *billingFixture {
	t.Helper()
	ctx := context.Background()

	db := inmemdb.NewDB()
	schoolRepo := inmemdb.NewSchoolRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	courseRepo := inmemdb.NewCourseRepository(db)
	billingRepo := inmemdb.NewBillingRepository(db)

	sch, err := schoolRepo.CreateSchool(ctx, school.School{
		Name:                   "Kivu Academy",
		SubscriptionStartYear:  2025,
		SubscriptionStartMonth: 10,
		DiscountAmount:         decimal.RequireFromString(discount),
		IsActive:               true,
	})
	if err != nil {
		t.Fatalf("creating school: %v", err)
	}
	crs, err := courseRepo.CreateCourse(ctx, course.Course{
		SchoolID: sch.ID,
		Name:     "Mathematics",
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("creating course: %v", err)
	}
	grp, err := courseRepo.CreateClassGroup(ctx, course.ClassGroup{
		SchoolID:  sch.ID,
		Name:      "Math A",
		CourseID:  crs.ID,
		StartTime: "08:00",
		EndTime:   "10:00",
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("creating class group: %v", err)
	}

	return &billingFixture{
		db:     db,
		svc:    billing.NewService(billingRepo, schoolRepo, studentRepo, courseRepo),
		school: sch,
		course: crs,
		group:  grp,
	}
}

func (f *billingFixture) createStudent(t *testing.T, code, tier string, assigned bool) student.Student {
	t.Helper()
	std := student.Student{
		SchoolID:     f.school.ID,
		Code:         code,
		Name:         "Student " + code,
		Gender:       student.GenderMale,
		AcademicYear: student.YearPrimary1,
		DiscountTier: tier,
		IsActive:     true,
	}
	if assigned {
		std.GroupID = null.StringFrom(f.group.ID)
	}
	created, err := inmemdb.NewStudentRepository(f.db).CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("creating student: %v", err)
	}
	return created
}

func TestExpectedAmount(t *testing.T) {
	price := decimal.RequireFromString("300.00")
	discount := decimal.RequireFromString("50.00")

	tests := []struct {
		name     string
		tier     string
		discount decimal.Decimal
		want     string
	}{
		{name: "tier none pays full price", tier: student.DiscountNone, discount: discount, want: "300.00"},
		{name: "tier discount pays price minus discount", tier: student.DiscountPart, discount: discount, want: "250.00"},
		{name: "tier full pays nothing", tier: student.DiscountFull, discount: discount, want: "0"},
		{name: "no discount config defaults to 0", tier: student.DiscountPart, discount: decimal.Zero, want: "300.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.ExpectedAmount(price, tt.discount, tt.tier)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ExpectedAmount() = %v, want %v", got, tt.want)
			}
			// pure function: same inputs, same result
			if again := billing.ExpectedAmount(price, tt.discount, tt.tier); !again.Equal(got) {
				t.Errorf("ExpectedAmount() not deterministic: %v != %v", again, got)
			}
		})
	}
}

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, "300.00", "50.00")
	std := f.createStudent(t, "10001", student.DiscountPart, true)

	inv, err := f.svc.CreateInvoice(ctx, billing.NewInvoice{
		SchoolID:    f.school.ID,
		StudentCode: std.Code,
		Amount:      decimal.RequireFromString("250.00"),
		Month:       3,
		Year:        2026,
	})
	if err != nil {
		t.Fatalf("CreateInvoice(): %v", err)
	}
	if inv.StudentID != std.ID {
		t.Errorf("invoice studentID = %v, want %v", inv.StudentID, std.ID)
	}

	// exactly one paid status materialized with the invoice
	statuses, err := f.svc.FilterPaymentStatuses(ctx, &billing.QueryFilter{StudentID: std.ID}, nil)
	if err != nil {
		t.Fatalf("FilterPaymentStatuses(): %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d payment statuses, want 1", len(statuses))
	}
	if status := statuses[0]; !status.IsPaid || status.InvoiceID != inv.ID || status.Month != time.March || status.Year != 2026 {
		t.Errorf("unexpected payment status: %+v", status)
	}

	// a second invoice for the same (student, month, year) fails and
	// leaves the ledger unchanged
	_, err = f.svc.CreateInvoice(ctx, billing.NewInvoice{
		SchoolID:    f.school.ID,
		StudentCode: std.Code,
		Amount:      decimal.RequireFromString("250.00"),
		Month:       3,
		Year:        2026,
	})
	if errors.Cause(err) != billing.ErrDuplicateInvoice {
		t.Errorf("CreateInvoice() error = %v, want ErrDuplicateInvoice", err)
	}
	invoices, _ := f.svc.FilterInvoices(ctx, &billing.QueryFilter{StudentID: std.ID}, nil)
	statuses, _ = f.svc.FilterPaymentStatuses(ctx, &billing.QueryFilter{StudentID: std.ID}, nil)
	if len(invoices) != 1 || len(statuses) != 1 {
		t.Errorf("ledger changed after duplicate: %d invoices, %d statuses", len(invoices), len(statuses))
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, "300.00", "50.00")

	unassigned := f.createStudent(t, "10002", student.DiscountNone, false)
	exempt := f.createStudent(t, "10003", student.DiscountFull, true)
	regular := f.createStudent(t, "10004", student.DiscountNone, true)

	tests := []struct {
		name    string
		code    string
		amount  string
		wantErr error
	}{
		{name: "unassigned student", code: unassigned.Code, amount: "300.00", wantErr: billing.ErrUnassignedStudent},
		{name: "exempt student", code: exempt.Code, amount: "0", wantErr: billing.ErrExemptStudent},
		{name: "amount mismatch", code: regular.Code, amount: "299.99", wantErr: billing.ErrAmountMismatch},
		{name: "unknown student", code: "99999", amount: "300.00", wantErr: student.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateInvoice(ctx, billing.NewInvoice{
				SchoolID:    f.school.ID,
				StudentCode: tt.code,
				Amount:      decimal.RequireFromString(tt.amount),
				Month:       3,
				Year:        2026,
			})
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("CreateInvoice() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// no rows written by any failed attempt
	invoices, _ := f.svc.FilterInvoices(ctx, nil, nil)
	statuses, _ := f.svc.FilterPaymentStatuses(ctx, nil, nil)
	if len(invoices) != 0 || len(statuses) != 0 {
		t.Errorf("ledger not empty after failures: %d invoices, %d statuses", len(invoices), len(statuses))
	}
}

func TestMissingMonths(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, "300.00", "50.00")

	billing.NowFunc = func() time.Time { return time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC) }
	defer func() { billing.NowFunc = time.Now }()

	std := f.createStudent(t, "10005", student.DiscountNone, true)
	exempt := f.createStudent(t, "10006", student.DiscountFull, true)

	// pay 2025-11 only
	if _, err := f.svc.CreateInvoice(ctx, billing.NewInvoice{
		SchoolID:    f.school.ID,
		StudentCode: std.Code,
		Amount:      decimal.RequireFromString("300.00"),
		Month:       11,
		Year:        2025,
	}); err != nil {
		t.Fatalf("CreateInvoice(): %v", err)
	}

	missing, err := f.svc.MissingMonths(ctx, std.ID)
	if err != nil {
		t.Fatalf("MissingMonths(): %v", err)
	}
	want := []string{"2025-10", "2025-12", "2026-01"}
	if len(missing) != len(want) {
		t.Fatalf("MissingMonths() = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("MissingMonths()[%d] = %v, want %v", i, missing[i], want[i])
		}
	}

	// fully exempt students always yield an empty list
	missing, err = f.svc.MissingMonths(ctx, exempt.ID)
	if err != nil {
		t.Fatalf("MissingMonths(): %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("MissingMonths() for exempt student = %v, want empty", missing)
	}
}
