package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Gender choices
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Discount tiers controlling the expected invoice amount.
const (
	DiscountNone = "none"     // full course price
	DiscountPart = "discount" // course price minus the school's flat discount
	DiscountFull = "full"     // exempt; never invoiced
)

// Academic year levels, ordered from pre-primary through graduate.
const (
	YearPrePrimary  = "pre_primary"
	YearPrimary1    = "primary_1"
	YearPrimary2    = "primary_2"
	YearPrimary3    = "primary_3"
	YearPrimary4    = "primary_4"
	YearPrimary5    = "primary_5"
	YearPrimary6    = "primary_6"
	YearMiddle1     = "middle_1"
	YearMiddle2     = "middle_2"
	YearMiddle3     = "middle_3"
	YearHigh1       = "high_1"
	YearHigh2       = "high_2"
	YearHigh3       = "high_3"
	YearUniversity1 = "university_1"
	YearUniversity2 = "university_2"
	YearUniversity3 = "university_3"
	YearUniversity4 = "university_4"
	YearGraduate    = "graduate"
)

var (
	Genders       = []string{GenderMale, GenderFemale}
	DiscountTiers = []string{DiscountNone, DiscountPart, DiscountFull}

	AcademicYears = []string{
		YearPrePrimary,
		YearPrimary1, YearPrimary2, YearPrimary3, YearPrimary4, YearPrimary5, YearPrimary6,
		YearMiddle1, YearMiddle2, YearMiddle3,
		YearHigh1, YearHigh2, YearHigh3,
		YearUniversity1, YearUniversity2, YearUniversity3, YearUniversity4,
		YearGraduate,
	}

	// academicYearUpgrade maps each level to the next one;
	// "graduate" is an absorbing terminal state.
	academicYearUpgrade = map[string]string{
		YearPrePrimary:  YearPrimary1,
		YearPrimary1:    YearPrimary2,
		YearPrimary2:    YearPrimary3,
		YearPrimary3:    YearPrimary4,
		YearPrimary4:    YearPrimary5,
		YearPrimary5:    YearPrimary6,
		YearPrimary6:    YearMiddle1,
		YearMiddle1:     YearMiddle2,
		YearMiddle2:     YearMiddle3,
		YearMiddle3:     YearHigh1,
		YearHigh1:       YearHigh2,
		YearHigh2:       YearHigh3,
		YearHigh3:       YearUniversity1,
		YearUniversity1: YearUniversity2,
		YearUniversity2: YearUniversity3,
		YearUniversity3: YearUniversity4,
		YearUniversity4: YearGraduate,
		YearGraduate:    YearGraduate,
	}
)

// NextAcademicYear returns the level following `year` along the fixed
// progression table; unknown levels map to themselves.
func NextAcademicYear(year string) string {
	if next, ok := academicYearUpgrade[year]; ok {
		return next
	}
	return year
}

type Student struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	// Code is a short generated digit code; globally unique,
	// immutable once assigned.
	Code string `json:"code"`

	Name             string      `json:"name"`
	Gender           string      `json:"gender"`
	BirthDate        null.Time   `json:"birth_date,omitempty"`
	AcademicYear     string      `json:"academic_year"`
	Level            string      `json:"level,omitempty"`
	GroupID          null.String `json:"group_id,omitempty"` // unassigned students cannot be invoiced
	Phone            string      `json:"phone,omitempty"`
	ParentProfession string      `json:"parent_profession,omitempty"`
	DiscountTier     string      `json:"discount_tier"`

	IsActive         bool      `json:"is_active"`
	RegistrationDate time.Time `json:"registration_date"` // UTC
	CreatedAt        time.Time `json:"created_at"`        // UTC
	UpdatedAt        time.Time `json:"updated_at"`        // UTC
}

func (s *Student) IsExempt() bool {
	return s.DiscountTier == DiscountFull
}

func (s *Student) IsAssigned() bool {
	return s.GroupID.Valid && s.GroupID.String != ""
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	SchoolID         string      `json:"school_id" validate:"required"`
	Name             string      `json:"name" validate:"required"`
	Gender           string      `json:"gender" validate:"required,gender"`
	BirthDate        null.Time   `json:"birth_date"`
	AcademicYear     string      `json:"academic_year" validate:"required,academic_year"`
	Level            string      `json:"level"`
	GroupID          null.String `json:"group_id"`
	Phone            string      `json:"phone" validate:"omitempty,digits,len=11"`
	ParentProfession string      `json:"parent_profession"`
	DiscountTier     string      `json:"discount_tier" validate:"required,discount_tier"`
	RegistrationDate *time.Time  `json:"registration_date"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Phone = core.CleanString(ns.Phone)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. The generated code is immutable and not listed here.
type UpdateStudent struct {
	Name             string      `json:"name"`
	Gender           string      `json:"gender" validate:"omitempty,gender"`
	BirthDate        null.Time   `json:"birth_date"`
	AcademicYear     string      `json:"academic_year" validate:"omitempty,academic_year"`
	Level            string      `json:"level"`
	GroupID          null.String `json:"group_id"`
	Phone            string      `json:"phone" validate:"omitempty,digits,len=11"`
	ParentProfession string      `json:"parent_profession"`
	DiscountTier     string      `json:"discount_tier" validate:"omitempty,discount_tier"`
	IsActive         *bool       `json:"is_active"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Phone = core.CleanString(us.Phone)
	return validate.Struct(us)
}
