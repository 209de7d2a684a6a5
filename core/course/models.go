package course

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"` // base tuition per billing period
	Description string          `json:"description,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// ClassGroup is a course taught by a teacher within a time window.
type ClassGroup struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	Name      string `json:"name"`
	CourseID  string `json:"course_id"`
	TeacherID string `json:"teacher_id"`
	StartTime string `json:"start_time"` // "HH:MM"
	EndTime   string `json:"end_time"`   // "HH:MM"

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC

	Course *Course `json:"course,omitempty"` // set on fetch
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	SchoolID    string          `json:"school_id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	if err := validate.Struct(nc); err != nil {
		return err
	}
	if nc.Price.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "price", Error: "cannot be negative"})
	}
	return nil
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	if err := validate.Struct(uc); err != nil {
		return err
	}
	if uc.Price != nil && uc.Price.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "price", Error: "cannot be negative"})
	}
	return nil
}

// NewClassGroup contains information needed to create a new ClassGroup.
type NewClassGroup struct {
	SchoolID  string `json:"school_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	StartTime string `json:"start_time" validate:"required,timeofday"`
	EndTime   string `json:"end_time" validate:"required,timeofday"`
}

func (ng *NewClassGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	if err := validate.Struct(ng); err != nil {
		return err
	}
	return checkTimeWindow(ng.StartTime, ng.EndTime)
}

// UpdateClassGroup defines what information may be provided to modify an existing ClassGroup.
type UpdateClassGroup struct {
	Name      string `json:"name"`
	CourseID  string `json:"course_id"`
	TeacherID string `json:"teacher_id"`
	StartTime string `json:"start_time" validate:"omitempty,timeofday"`
	EndTime   string `json:"end_time" validate:"omitempty,timeofday"`
	IsActive  *bool  `json:"is_active"`
}

func (ug *UpdateClassGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanString(ug.Name)
	return validate.Struct(ug)
}

func checkTimeWindow(start, end string) error {
	if start != "" && end != "" && end <= start {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be after start_time"})
	}
	return nil
}
