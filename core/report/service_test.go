package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

// stubRepository returns crafted tallies to exercise the rollup math.
type stubRepository struct {
	tallies []report.GroupTally
}

func (r *stubRepository) GroupTallies(ctx context.Context, schoolID string, period billing.Period) ([]report.GroupTally, error) {
	return r.tallies, nil
}

func (r *stubRepository) PaymentItems(ctx context.Context, schoolID string, from, to *time.Time) ([]report.PaymentItem, error) {
	return nil, nil
}

func TestGroupSummaryRollup(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	schoolRepo := inmemdb.NewSchoolRepository(db)
	sch, err := schoolRepo.CreateSchool(ctx, school.School{
		Name:           "Kivu Academy",
		DiscountAmount: decimal.RequireFromString("20.00"),
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("creating school: %v", err)
	}

	period := billing.Period{Year: 2026, Month: time.March}

	t.Run("counts and totals", func(t *testing.T) {
		repo := &stubRepository{tallies: []report.GroupTally{{
			GroupID:             "g1",
			GroupName:           "Math A",
			CoursePrice:         decimal.RequireFromString("200.00"),
			TotalStudents:       10,
			PaidNoneCurrent:     6,
			PaidDiscountCurrent: 1,
			FullDiscount:        1,
		}}}
		svc := report.NewService(repo, schoolRepo)

		summaries, err := svc.GroupSummary(ctx, sch.ID, period)
		if err != nil {
			t.Fatalf("GroupSummary(): %v", err)
		}
		if len(summaries) != 1 {
			t.Fatalf("got %d summaries, want 1", len(summaries))
		}
		sum := summaries[0]
		if sum.NotPaid != 2 {
			t.Errorf("NotPaid = %d, want 2", sum.NotPaid)
		}
		if want := decimal.RequireFromString("1380.00"); !sum.CurrentTotal.Equal(want) {
			t.Errorf("CurrentTotal = %v, want %v", sum.CurrentTotal, want)
		}
		if !sum.FinalTotal.Equal(sum.CurrentTotal.Add(sum.OtherTotal)) {
			t.Errorf("FinalTotal = %v, want current+other", sum.FinalTotal)
		}
	})

	t.Run("other periods add to the grand total", func(t *testing.T) {
		repo := &stubRepository{tallies: []report.GroupTally{{
			GroupID:           "g1",
			GroupName:         "Math A",
			CoursePrice:       decimal.RequireFromString("200.00"),
			TotalStudents:     3,
			PaidNoneCurrent:   1,
			PaidNoneOther:     2,
			PaidDiscountOther: 1,
		}}}
		svc := report.NewService(repo, schoolRepo)

		summaries, err := svc.GroupSummary(ctx, sch.ID, period)
		if err != nil {
			t.Fatalf("GroupSummary(): %v", err)
		}
		sum := summaries[0]
		// other = 2x200 + 1x180
		if want := decimal.RequireFromString("580.00"); !sum.OtherTotal.Equal(want) {
			t.Errorf("OtherTotal = %v, want %v", sum.OtherTotal, want)
		}
		if want := decimal.RequireFromString("780.00"); !sum.FinalTotal.Equal(want) {
			t.Errorf("FinalTotal = %v, want %v", sum.FinalTotal, want)
		}
	})

	t.Run("inconsistent ledger is flagged, not clamped", func(t *testing.T) {
		repo := &stubRepository{tallies: []report.GroupTally{{
			GroupID:         "g1",
			GroupName:       "Math A",
			CoursePrice:     decimal.RequireFromString("200.00"),
			TotalStudents:   1,
			PaidNoneCurrent: 2,
		}}}
		svc := report.NewService(repo, schoolRepo)

		if _, err := svc.GroupSummary(ctx, sch.ID, period); errors.Cause(err) != report.ErrInconsistentLedger {
			t.Errorf("GroupSummary() error = %v, want ErrInconsistentLedger", err)
		}
	})
}

func TestGroupSummaryFromLedger(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	schoolRepo := inmemdb.NewSchoolRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	courseRepo := inmemdb.NewCourseRepository(db)
	billingRepo := inmemdb.NewBillingRepository(db)
	reportRepo := inmemdb.NewReportRepository(db)

	sch, _ := schoolRepo.CreateSchool(ctx, school.School{
		Name:                   "Kivu Academy",
		SubscriptionStartYear:  2025,
		SubscriptionStartMonth: 10,
		DiscountAmount:         decimal.RequireFromString("20.00"),
		IsActive:               true,
	})
	crs, _ := courseRepo.CreateCourse(ctx, course.Course{
		SchoolID: sch.ID, Name: "Mathematics", Price: decimal.RequireFromString("200.00"), IsActive: true,
	})
	grp, _ := courseRepo.CreateClassGroup(ctx, course.ClassGroup{
		SchoolID: sch.ID, Name: "Math A", CourseID: crs.ID, StartTime: "08:00", EndTime: "10:00", IsActive: true,
	})

	mkStudent := func(code, tier string) student.Student {
		std, err := studentRepo.CreateStudent(ctx, student.Student{
			SchoolID:     sch.ID,
			Code:         code,
			Name:         "Student " + code,
			Gender:       student.GenderFemale,
			AcademicYear: student.YearPrimary2,
			GroupID:      null.StringFrom(grp.ID),
			DiscountTier: tier,
			IsActive:     true,
		})
		if err != nil {
			t.Fatalf("creating student: %v", err)
		}
		return std
	}

	billingSvc := billing.NewService(billingRepo, schoolRepo, studentRepo, courseRepo)
	pay := func(std student.Student, amount string, month, year int) {
		if _, err := billingSvc.CreateInvoice(ctx, billing.NewInvoice{
			SchoolID:    sch.ID,
			StudentCode: std.Code,
			Amount:      decimal.RequireFromString(amount),
			Month:       month,
			Year:        year,
		}); err != nil {
			t.Fatalf("paying student %s: %v", std.Code, err)
		}
	}

	paidNone := mkStudent("20001", student.DiscountNone)
	paidDiscount := mkStudent("20002", student.DiscountPart)
	mkStudent("20003", student.DiscountFull)
	unpaid := mkStudent("20004", student.DiscountNone)

	pay(paidNone, "200.00", 3, 2026)
	pay(paidDiscount, "180.00", 3, 2026)
	pay(unpaid, "200.00", 2, 2026) // prior period only

	svc := report.NewService(reportRepo, schoolRepo)
	summaries, err := svc.GroupSummary(ctx, sch.ID, billing.Period{Year: 2026, Month: time.March})
	if err != nil {
		t.Fatalf("GroupSummary(): %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	sum := summaries[0]

	if sum.TotalStudents != 4 || sum.PaidCurrent != 1 || sum.DiscountPaidCurrent != 1 || sum.FullDiscount != 1 {
		t.Errorf("unexpected counts: %+v", sum)
	}
	if sum.NotPaid != 1 {
		t.Errorf("NotPaid = %d, want 1", sum.NotPaid)
	}
	if sum.PaidPrevious != 1 {
		t.Errorf("PaidPrevious = %d, want 1", sum.PaidPrevious)
	}
	// current: 200 + 180; other: 200
	if want := decimal.RequireFromString("380.00"); !sum.CurrentTotal.Equal(want) {
		t.Errorf("CurrentTotal = %v, want %v", sum.CurrentTotal, want)
	}
	if want := decimal.RequireFromString("580.00"); !sum.FinalTotal.Equal(want) {
		t.Errorf("FinalTotal = %v, want %v", sum.FinalTotal, want)
	}

	// itemized payment summary
	items, err := svc.PaymentSummary(ctx, sch.ID, nil, nil)
	if err != nil {
		t.Fatalf("PaymentSummary(): %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d payment items, want 3", len(items))
	}
	for _, item := range items {
		if item.StudentCode == "" || item.StudentName == "" || item.Amount.IsZero() {
			t.Errorf("incomplete payment item: %+v", item)
		}
	}
}
