package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	schoolID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		SchoolID:  null.NewString(schoolID, schoolID != ""),
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSchool(
	t *testing.T,
	repo school.Repository,
	name string,
	startYear int,
	startMonth time.Month,
	discount decimal.Decimal,
) school.School {
	t.Helper()

	now := time.Now().UTC()
	sch, err := repo.CreateSchool(context.Background(), school.School{
		Name:                   name,
		SubscriptionStartYear:  startYear,
		SubscriptionStartMonth: int(startMonth),
		DiscountAmount:         discount,
		IsActive:               true,
		CreatedAt:              now,
		UpdatedAt:              now,
	})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	return sch
}

func CreateTeacher(t *testing.T, repo teacher.Repository, schoolID, name string) teacher.Teacher {
	t.Helper()

	now := time.Now().UTC()
	tchr, err := repo.CreateTeacher(context.Background(), teacher.Teacher{
		SchoolID:         schoolID,
		Name:             name,
		Gender:           "M",
		IsActive:         true,
		RegistrationDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

func CreateCourse(t *testing.T, repo course.Repository, schoolID, name string, price decimal.Decimal) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		SchoolID:  schoolID,
		Name:      name,
		Price:     price,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateClassGroup(t *testing.T, repo course.Repository, schoolID, name, courseID, teacherID string) course.ClassGroup {
	t.Helper()

	now := time.Now().UTC()
	grp, err := repo.CreateClassGroup(context.Background(), course.ClassGroup{
		SchoolID:  schoolID,
		Name:      name,
		CourseID:  courseID,
		TeacherID: teacherID,
		StartTime: "08:00",
		EndTime:   "10:00",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClassGroup() failed: %v", err)
	}
	return grp
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	schoolID, name, code, tier, groupID string,
) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		SchoolID:         schoolID,
		Code:             code,
		Name:             name,
		Gender:           student.GenderFemale,
		AcademicYear:     student.YearPrimary1,
		GroupID:          null.NewString(groupID, groupID != ""),
		DiscountTier:     tier,
		IsActive:         true,
		RegistrationDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

// CreateInvoice records a paid period for a student, writing the
// invoice and its payment status the way the billing service does.
func CreateInvoice(
	t *testing.T,
	repo billing.Repository,
	schoolID, studentID string,
	amount decimal.Decimal,
	month time.Month,
	year int,
) billing.Invoice {
	t.Helper()

	now := time.Now().UTC()
	inv, err := repo.CreateInvoiceWithStatus(
		context.Background(),
		billing.Invoice{
			SchoolID:  schoolID,
			StudentID: studentID,
			Amount:    amount,
			Month:     month,
			Year:      year,
			Date:      now,
			CreatedAt: now,
			UpdatedAt: now,
		},
		billing.PaymentStatus{
			SchoolID:  schoolID,
			StudentID: studentID,
			Month:     month,
			Year:      year,
			IsPaid:    true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	)
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}
	return inv
}
