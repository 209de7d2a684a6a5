package billing

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core"
)

// Invoice is a tuition payment entry for one student and one billing
// period. At most one invoice exists per (student, month, year).
type Invoice struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	StudentID string          `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	Month     time.Month      `json:"month"`
	Year      int             `json:"year"`
	Date      time.Time       `json:"date"` // payment date, UTC

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (inv *Invoice) Period() Period {
	return Period{Year: inv.Year, Month: inv.Month}
}

// PaymentStatus asserts a student is paid for a billing period. Rows
// are created exclusively as a side effect of invoice creation, one
// per (student, month, year).
type PaymentStatus struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	StudentID string     `json:"student_id"`
	InvoiceID string     `json:"invoice_id"`
	Month     time.Month `json:"month"`
	Year      int        `json:"year"`
	IsPaid    bool       `json:"is_paid"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (ps *PaymentStatus) Period() Period {
	return Period{Year: ps.Year, Month: ps.Month}
}

// NewInvoice contains information needed to record a payment. The
// student is resolved by unique code, or by name when no code is given.
type NewInvoice struct {
	SchoolID    string          `json:"school_id" validate:"required"`
	StudentCode string          `json:"student_code" validate:"required_without=StudentName"`
	StudentName string          `json:"student_name"`
	Amount      decimal.Decimal `json:"amount"`
	Month       int             `json:"month" validate:"required,min=1,max=12"`
	Year        int             `json:"year" validate:"required,min=2000,max=2100"`
	Date        *time.Time      `json:"date"`
}

func (ni *NewInvoice) Validate(validate *validator.Validate) error {
	ni.StudentCode = core.CleanString(ni.StudentCode)
	ni.StudentName = core.CleanString(ni.StudentName)
	if err := validate.Struct(ni); err != nil {
		return err
	}
	if ni.Amount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "cannot be negative"})
	}
	return nil
}
