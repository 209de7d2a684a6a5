package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory store backing the repositories; it is used in
// tests and the local seed command.
type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	schools     map[string]*school.School
	students    map[string]*student.Student
	teachers    map[string]*teacher.Teacher
	courses     map[string]*course.Course
	groups      map[string]*course.ClassGroup
	attendances map[string]*attendance.Attendance
	invoices    map[string]*billing.Invoice
	statuses    map[string]*billing.PaymentStatus
}

func NewDB() *DB {
	return &DB{
		users:       make(map[string]*user.User),
		schools:     make(map[string]*school.School),
		students:    make(map[string]*student.Student),
		teachers:    make(map[string]*teacher.Teacher),
		courses:     make(map[string]*course.Course),
		groups:      make(map[string]*course.ClassGroup),
		attendances: make(map[string]*attendance.Attendance),
		invoices:    make(map[string]*billing.Invoice),
		statuses:    make(map[string]*billing.PaymentStatus),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*user.User)
	db.schools = make(map[string]*school.School)
	db.students = make(map[string]*student.Student)
	db.teachers = make(map[string]*teacher.Teacher)
	db.courses = make(map[string]*course.Course)
	db.groups = make(map[string]*course.ClassGroup)
	db.attendances = make(map[string]*attendance.Attendance)
	db.invoices = make(map[string]*billing.Invoice)
	db.statuses = make(map[string]*billing.PaymentStatus)
}
