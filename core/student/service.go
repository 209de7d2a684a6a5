package student

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrCodeExists      = errors.New("a student with this code already exists")
	ErrAlreadyAdvanced = errors.New("academic year already advanced today")

	NowFunc = time.Now // mockable

	codeMin         = int64(10000) // 5-digit codes
	codeSpan        = int64(90000)
	maxCodeAttempts = 5
)

type (
	// GetFilter looks a Student up by ID, unique code or name;
	// the first non-empty field applies.
	GetFilter struct {
		ID   string
		Code string
		Name string // case-insensitive partial match; first hit wins
	}

	// QueryFilter applies AND operation on available fields.
	QueryFilter struct {
		SchoolID string `query:"school"`
		Search   string `query:"search"` // matches name or code
		Gender   string `query:"gender"`
		GroupID  string `query:"group"`
		IsActive *bool  `query:"is_active"`
	}

	Repository interface {
		// CreateStudent persists a new Student;
		// returns ErrCodeExists on a code collision.
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		FilterStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student, isActive *bool) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error

		// AdvanceAcademicYears moves every student of the school one step
		// along the academic year progression table and records `advancedOn`
		// on the school, all in one transaction.
		// It returns the number of students advanced.
		AdvanceAcademicYears(ctx context.Context, schoolID string, advancedOn time.Time) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByCodeOrName(ctx context.Context, code, name string) (Student, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error
		AdvanceAcademicYear(ctx context.Context, schoolID string) (int, error)
	}

	service struct {
		repo       Repository
		schoolRepo school.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schoolRepo school.Repository) Service {
	return &service{
		repo:       repo,
		schoolRepo: schoolRepo,
	}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := NowFunc().UTC()
	regDate := now
	if ns.RegistrationDate != nil {
		regDate = ns.RegistrationDate.UTC()
	}
	std := Student{
		SchoolID:         ns.SchoolID,
		Name:             ns.Name,
		Gender:           ns.Gender,
		BirthDate:        ns.BirthDate,
		AcademicYear:     ns.AcademicYear,
		Level:            ns.Level,
		GroupID:          ns.GroupID,
		Phone:            ns.Phone,
		ParentProfession: ns.ParentProfession,
		DiscountTier:     ns.DiscountTier,
		IsActive:         true,
		RegistrationDate: regDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// the code is generated here and immutable afterwards; the unique
	// constraint resolves collisions, we just retry with a fresh code.
	var err error
	for i := 0; i < maxCodeAttempts; i++ {
		std.Code = generateCode()
		var created Student
		if created, err = svc.repo.CreateStudent(ctx, std); err == nil {
			return created, nil
		}
		if errors.Cause(err) != ErrCodeExists {
			return Student{}, err
		}
	}
	return Student{}, errors.Wrap(err, "allocating student code")
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *service) GetByCodeOrName(ctx context.Context, code, name string) (Student, error) {
	if code != "" {
		return svc.repo.GetStudent(ctx, GetFilter{Code: core.CleanString(code)})
	}
	return svc.repo.GetStudent(ctx, GetFilter{Name: core.CleanString(name)})
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}

	std := orig
	if us.Name != "" {
		std.Name = us.Name
	}
	if us.Gender != "" {
		std.Gender = us.Gender
	}
	if us.BirthDate.Valid {
		std.BirthDate = us.BirthDate
	}
	if us.AcademicYear != "" {
		std.AcademicYear = us.AcademicYear
	}
	if us.Level != "" {
		std.Level = us.Level
	}
	if us.GroupID.Valid {
		std.GroupID = us.GroupID
	}
	if us.Phone != "" {
		std.Phone = us.Phone
	}
	if us.ParentProfession != "" {
		std.ParentProfession = us.ParentProfession
	}
	if us.DiscountTier != "" {
		std.DiscountTier = us.DiscountTier
	}
	std.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, std, us.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

// AdvanceAcademicYear moves every student of the school one step along
// the progression table. It refuses to run twice on the same day for
// the same tenant; the `YearAdvancedOn` marker makes it safe to repeat
// after an interrupted run.
func (svc *service) AdvanceAcademicYear(ctx context.Context, schoolID string) (int, error) {
	sch, err := svc.schoolRepo.GetSchoolByID(ctx, schoolID)
	if err != nil {
		return 0, err
	}

	today := truncateToDay(NowFunc().UTC())
	if sch.YearAdvancedOn != nil && truncateToDay(sch.YearAdvancedOn.UTC()).Equal(today) {
		return 0, ErrAlreadyAdvanced
	}
	return svc.repo.AdvanceAcademicYears(ctx, schoolID, today)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		// crypto/rand failure is not recoverable here
		panic(err)
	}
	return big.NewInt(codeMin + n.Int64()).String()
}
