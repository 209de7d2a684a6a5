package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupTally carries the raw per-group counts scanned from the ledger
// for a target period. Monetary totals are derived from it.
type GroupTally struct {
	GroupID     string
	GroupName   string
	CourseName  string
	CoursePrice decimal.Decimal

	TotalStudents int

	// per discount tier, paid for the target period
	PaidNoneCurrent     int
	PaidDiscountCurrent int

	// paid payment rows for any other period in the ledger
	PaidNoneOther     int
	PaidDiscountOther int

	// fully exempt students; never counted paid or unpaid
	FullDiscount int
}

// GroupSummary is the per-group rollup for one billing period.
type GroupSummary struct {
	GroupID     string          `json:"group_id"`
	GroupName   string          `json:"group_name"`
	CourseName  string          `json:"course_name"`
	CoursePrice decimal.Decimal `json:"course_price"`

	TotalStudents        int `json:"total_students"`
	PaidCurrent          int `json:"students_paid_current"`
	DiscountPaidCurrent  int `json:"students_discount_current"`
	FullDiscount         int `json:"students_full_discount"`
	NotPaid              int `json:"students_not_paid"`
	PaidPrevious         int `json:"students_paid_previous"`
	DiscountPaidPrevious int `json:"students_discount_previous"`

	CurrentTotal decimal.Decimal `json:"current_total"`
	OtherTotal   decimal.Decimal `json:"other_total"`
	FinalTotal   decimal.Decimal `json:"final_total"`
}

// PaymentItem is one itemized payment row for export.
type PaymentItem struct {
	StudentCode string          `json:"student_code"`
	StudentName string          `json:"student_name"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Month       time.Month      `json:"month"`
	Year        int             `json:"year"`
}
