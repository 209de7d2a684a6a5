package tests

import (
	"log"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
	appfs "github.com/trezcool/darasa/fs"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

var (
	db  *inmemdb.DB
	app *echoapi.Server

	usrRepo     user.Repository
	schoolRepo  school.Repository
	studentRepo student.Repository
	teacherRepo teacher.Repository
	courseRepo  course.Repository
	billingRepo billing.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "TEST : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	schoolRepo = inmemdb.NewSchoolRepository(db)
	studentRepo = inmemdb.NewStudentRepository(db)
	teacherRepo = inmemdb.NewTeacherRepository(db)
	courseRepo = inmemdb.NewCourseRepository(db)
	billingRepo = inmemdb.NewBillingRepository(db)
	attendanceRepo := inmemdb.NewAttendanceRepository(db)
	reportRepo := inmemdb.NewReportRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	course.InitValidators(validate)

	core.ParseEmailTemplates(appfs.FS, logger)

	// set up server
	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			SchoolSvc:     school.NewService(schoolRepo),
			StudentSvc:    student.NewService(studentRepo, schoolRepo),
			TeacherSvc:    teacher.NewService(teacherRepo),
			CourseSvc:     course.NewService(courseRepo),
			AttendanceSvc: attendance.NewService(attendanceRepo),
			BillingSvc:    billing.NewService(billingRepo, schoolRepo, studentRepo, courseRepo),
			ReportSvc:     report.NewService(reportRepo, schoolRepo),
			Validate:      validate,
			Translator:    translator,

			DisableReqLogs: true,
		},
	)

	os.Exit(m.Run())
}
