package teacher

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Marital status choices
const (
	MaritalSingle  = "single"
	MaritalMarried = "married"
)

type Teacher struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	Name          string    `json:"name"`
	IDNumber      string    `json:"id_number"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Gender        string    `json:"gender"`
	MaritalStatus string    `json:"marital_status,omitempty"`
	BirthDate     null.Time `json:"birth_date,omitempty"`
	Qualification string    `json:"qualification,omitempty"`
	Description   string    `json:"description,omitempty"`

	IsActive         bool      `json:"is_active"`
	RegistrationDate time.Time `json:"registration_date"` // UTC
	CreatedAt        time.Time `json:"created_at"`        // UTC
	UpdatedAt        time.Time `json:"updated_at"`        // UTC
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	SchoolID      string    `json:"school_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	IDNumber      string    `json:"id_number" validate:"omitempty,digits,len=14"`
	Phone         string    `json:"phone" validate:"omitempty,digits,len=11"`
	Email         string    `json:"email" validate:"omitempty,email"`
	Gender        string    `json:"gender" validate:"required,gender"`
	MaritalStatus string    `json:"marital_status" validate:"omitempty,oneof=single married"`
	BirthDate     null.Time `json:"birth_date"`
	Qualification string    `json:"qualification"`
	Description   string    `json:"description"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
type UpdateTeacher struct {
	Name          string    `json:"name"`
	IDNumber      string    `json:"id_number" validate:"omitempty,digits,len=14"`
	Phone         string    `json:"phone" validate:"omitempty,digits,len=11"`
	Email         string    `json:"email" validate:"omitempty,email"`
	Gender        string    `json:"gender" validate:"omitempty,gender"`
	MaritalStatus string    `json:"marital_status" validate:"omitempty,oneof=single married"`
	BirthDate     null.Time `json:"birth_date"`
	Qualification string    `json:"qualification"`
	Description   string    `json:"description"`
	IsActive      *bool     `json:"is_active"`
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanString(ut.Name)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	return validate.Struct(ut)
}
