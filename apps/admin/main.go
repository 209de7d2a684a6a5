package main

import (
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.OpenX(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)

	// start CLI
	cli := commandLine{
		db:          db.DB,
		usrRepo:     sqlxrepos.NewUserRepository(db),
		schoolRepo:  schoolRepo,
		teacherRepo: sqlxrepos.NewTeacherRepository(db),
		courseRepo:  sqlxrepos.NewCourseRepository(db),
		studentSvc:  student.NewService(studentRepo, schoolRepo),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
