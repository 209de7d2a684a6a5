package student_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

var codeRegex = regexp.MustCompile(`^\d{5}$`)

func TestNextAcademicYear(t *testing.T) {
	tests := []struct {
		year string
		want string
	}{
		{student.YearPrePrimary, student.YearPrimary1},
		{student.YearPrimary6, student.YearMiddle1},
		{student.YearHigh3, student.YearUniversity1},
		{student.YearUniversity4, student.YearGraduate},
		{student.YearGraduate, student.YearGraduate}, // absorbing terminal state
		{"lol", "lol"},
	}
	for _, tt := range tests {
		if got := student.NextAcademicYear(tt.year); got != tt.want {
			t.Errorf("NextAcademicYear(%v) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestCreateStudent(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	schoolRepo := inmemdb.NewSchoolRepository(db)
	repo := inmemdb.NewStudentRepository(db)
	svc := student.NewService(repo, schoolRepo)

	sch, _ := schoolRepo.CreateSchool(ctx, school.School{Name: "Kivu Academy", IsActive: true})

	std, err := svc.Create(ctx, student.NewStudent{
		SchoolID:     sch.ID,
		Name:         "Amani Kalume",
		Gender:       student.GenderMale,
		AcademicYear: student.YearPrimary3,
		DiscountTier: student.DiscountNone,
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if !codeRegex.MatchString(std.Code) {
		t.Errorf("generated code = %q, want 5 digits", std.Code)
	}
	if !std.IsActive {
		t.Error("new student should be active")
	}

	// lookup by code and by name
	if got, err := svc.GetByCodeOrName(ctx, std.Code, ""); err != nil || got.ID != std.ID {
		t.Errorf("GetByCodeOrName(code) = %v, %v", got.ID, err)
	}
	if got, err := svc.GetByCodeOrName(ctx, "", "amani"); err != nil || got.ID != std.ID {
		t.Errorf("GetByCodeOrName(name) = %v, %v", got.ID, err)
	}

	// the code is immutable on update
	updated, err := svc.Update(ctx, std.ID, student.UpdateStudent{Name: "Amani K."})
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if updated.Code != std.Code {
		t.Errorf("code changed on update: %v -> %v", std.Code, updated.Code)
	}
}

func TestAdvanceAcademicYear(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	schoolRepo := inmemdb.NewSchoolRepository(db)
	repo := inmemdb.NewStudentRepository(db)
	svc := student.NewService(repo, schoolRepo)

	sch, _ := schoolRepo.CreateSchool(ctx, school.School{Name: "Kivu Academy", IsActive: true})

	mk := func(code, year string) student.Student {
		std, err := repo.CreateStudent(ctx, student.Student{
			SchoolID:     sch.ID,
			Code:         code,
			Name:         "Student " + code,
			Gender:       student.GenderFemale,
			AcademicYear: year,
			DiscountTier: student.DiscountNone,
			GroupID:      null.String{},
			IsActive:     true,
		})
		if err != nil {
			t.Fatalf("creating student: %v", err)
		}
		return std
	}
	p1 := mk("30001", student.YearPrimary1)
	grad := mk("30002", student.YearGraduate)

	count, err := svc.AdvanceAcademicYear(ctx, sch.ID)
	if err != nil {
		t.Fatalf("AdvanceAcademicYear(): %v", err)
	}
	if count != 2 {
		t.Errorf("advanced %d students, want 2", count)
	}

	if got, _ := svc.GetByID(ctx, p1.ID); got.AcademicYear != student.YearPrimary2 {
		t.Errorf("academic year = %v, want %v", got.AcademicYear, student.YearPrimary2)
	}
	if got, _ := svc.GetByID(ctx, grad.ID); got.AcademicYear != student.YearGraduate {
		t.Errorf("graduate moved to %v, want graduate", got.AcademicYear)
	}

	// refuses to run twice on the same day
	if _, err = svc.AdvanceAcademicYear(ctx, sch.ID); errors.Cause(err) != student.ErrAlreadyAdvanced {
		t.Errorf("AdvanceAcademicYear() error = %v, want ErrAlreadyAdvanced", err)
	}

	// runs again the next day
	student.NowFunc = func() time.Time { return time.Now().Add(24 * time.Hour) }
	defer func() { student.NowFunc = time.Now }()
	if _, err = svc.AdvanceAcademicYear(ctx, sch.ID); err != nil {
		t.Errorf("AdvanceAcademicYear() next day: %v", err)
	}
}
