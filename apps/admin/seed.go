package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/teacher"
)

// seed populates a demo school with a teacher, courses, class groups and
// students so a fresh install has something to look at.
func (cli *commandLine) seed(schoolName string) error {
	ctx := context.Background()
	now := time.Now().UTC()

	sch, err := cli.schoolRepo.CreateSchool(ctx, school.School{
		Name:                   schoolName,
		SubscriptionStartYear:  now.Year(),
		SubscriptionStartMonth: int(time.January),
		DiscountAmount:         decimal.NewFromInt(20),
		IsActive:               true,
		CreatedAt:              now,
		UpdatedAt:              now,
	})
	if err != nil {
		return err
	}

	tchr, err := cli.teacherRepo.CreateTeacher(ctx, teacher.Teacher{
		SchoolID:         sch.ID,
		Name:             "Patrick Mbuyi",
		Gender:           "M",
		IsActive:         true,
		RegistrationDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return err
	}

	courses := []struct {
		name  string
		price int64
		group string
	}{
		{name: "Mathematics", price: 100, group: "Math A"},
		{name: "French", price: 80, group: "French A"},
	}
	groupIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		crs, err := cli.courseRepo.CreateCourse(ctx, course.Course{
			SchoolID:  sch.ID,
			Name:      c.name,
			Price:     decimal.NewFromInt(c.price),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		grp, err := cli.courseRepo.CreateClassGroup(ctx, course.ClassGroup{
			SchoolID:  sch.ID,
			Name:      c.group,
			CourseID:  crs.ID,
			TeacherID: tchr.ID,
			StartTime: "08:00",
			EndTime:   "10:00",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		groupIDs = append(groupIDs, grp.ID)
	}

	students := []struct {
		name   string
		gender string
		tier   string
		group  int
	}{
		{name: "Alice Ilunga", gender: student.GenderFemale, tier: student.DiscountNone, group: 0},
		{name: "Benny Mutombo", gender: student.GenderMale, tier: student.DiscountPart, group: 0},
		{name: "Clara Kanku", gender: student.GenderFemale, tier: student.DiscountFull, group: 0},
		{name: "Didier Kazadi", gender: student.GenderMale, tier: student.DiscountNone, group: 1},
		{name: "Esther Tshala", gender: student.GenderFemale, tier: student.DiscountPart, group: 1},
	}
	for _, s := range students {
		if _, err := cli.studentSvc.Create(ctx, student.NewStudent{
			SchoolID:     sch.ID,
			Name:         s.name,
			Gender:       s.gender,
			AcademicYear: student.YearPrimary1,
			GroupID:      null.StringFrom(groupIDs[s.group]),
			DiscountTier: s.tier,
		}); err != nil {
			return err
		}
	}

	fmt.Printf("seeded school %q (%s): 1 teacher, %d courses, %d students\n", sch.Name, sch.ID, len(courses), len(students))
	return nil
}
