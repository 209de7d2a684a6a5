package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Attendance is a single student's presence record for a calendar day.
// A student with no record for a day is considered present; only
// deviations (and explicit confirmations) are stored.
type Attendance struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	StudentID string    `json:"student_id"`
	GroupID   string    `json:"group_id,omitempty"`
	Date      time.Time `json:"date"` // day precision, UTC
	Present   bool      `json:"present"`
	Note      string    `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewAttendance contains information needed to record a student's attendance.
// Recording twice for the same student and day updates the existing record.
type NewAttendance struct {
	SchoolID  string    `json:"school_id" validate:"required"`
	StudentID string    `json:"student_id" validate:"required"`
	GroupID   string    `json:"group_id"`
	Date      time.Time `json:"date" validate:"required"`
	Present   bool      `json:"present"`
	Note      string    `json:"note"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.Note = core.CleanString(na.Note)
	return validate.Struct(na)
}

// GroupAttendance records a whole class group's attendance for one day.
// Students absent from Entries keep their implicit "present" status.
type GroupAttendance struct {
	SchoolID string    `json:"school_id" validate:"required"`
	GroupID  string    `json:"group_id" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Entries  []Entry   `json:"entries" validate:"required,dive"`
}

type Entry struct {
	StudentID string `json:"student_id" validate:"required"`
	Present   bool   `json:"present"`
	Note      string `json:"note"`
}

func (ga *GroupAttendance) Validate(validate *validator.Validate) error {
	for i := range ga.Entries {
		ga.Entries[i].Note = core.CleanString(ga.Entries[i].Note)
	}
	return validate.Struct(ga)
}
