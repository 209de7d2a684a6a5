package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core"
)

// School is an isolated organizational unit (tenant) owning its own
// students, teachers, courses and billing configuration.
type School struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// billing configuration
	SubscriptionStartYear  int             `json:"subscription_start_year"`
	SubscriptionStartMonth int             `json:"subscription_start_month"`
	DiscountAmount         decimal.Decimal `json:"discount_amount"` // flat amount for "discount" tier students

	// YearAdvancedOn marks the last date the academic year advance batch
	// ran for this tenant; guards against running it twice.
	YearAdvancedOn *time.Time `json:"year_advanced_on,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewSchool contains information needed to create a new School.
type NewSchool struct {
	Name                   string          `json:"name" validate:"required"`
	SubscriptionStartYear  int             `json:"subscription_start_year" validate:"required,min=2000"`
	SubscriptionStartMonth int             `json:"subscription_start_month" validate:"required,min=1,max=12"`
	DiscountAmount         decimal.Decimal `json:"discount_amount"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.DiscountAmount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "discount_amount", Error: "cannot be negative"})
	}
	return nil
}

// UpdateSchool defines what information may be provided to modify an existing School.
type UpdateSchool struct {
	Name                   string           `json:"name"`
	SubscriptionStartYear  int              `json:"subscription_start_year" validate:"omitempty,min=2000"`
	SubscriptionStartMonth int              `json:"subscription_start_month" validate:"omitempty,min=1,max=12"`
	DiscountAmount         *decimal.Decimal `json:"discount_amount"`
	IsActive               *bool            `json:"is_active"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.DiscountAmount != nil && us.DiscountAmount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "discount_amount", Error: "cannot be negative"})
	}
	return nil
}
