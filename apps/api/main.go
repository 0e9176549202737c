package main

import (
	"log"
	"os"

	"github.com/pogorelof/ai-exam/apps/api/echo"
	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/quiz"
	"github.com/pogorelof/ai-exam/core/school"
	"github.com/pogorelof/ai-exam/core/user"
	"github.com/pogorelof/ai-exam/services/email"
	logsvc "github.com/pogorelof/ai-exam/services/logger"
	"github.com/pogorelof/ai-exam/services/questiongen"
	"github.com/pogorelof/ai-exam/storage/database"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	stdLogger := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	appLogger := logsvc.NewRollbarLogger(stdLogger, conf)
	appLogger.Enable(!(conf.Debug || conf.TestMode))

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf.AppName)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}
	var generator quiz.Generator
	if conf.TestMode {
		generator = questiongensvc.NewPlaceholderGenerator()
	} else {
		generator = questiongensvc.NewOpenAIGenerator(conf)
	}

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	usrSvc := user.NewService(database.NewUserRepository(db), mailSvc, conf)
	schoolSvc := school.NewService(database.NewSchoolRepository(db))
	quizSvc := quiz.NewService(database.NewQuizRepository(db), schoolSvc, usrSvc, generator)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:    conf.Server.Address(),
			Conf:       conf,
			Logger:     appLogger,
			Validate:   validate,
			Translator: translator,
			UserSvc:    usrSvc,
			SchoolSvc:  schoolSvc,
			QuizSvc:    quizSvc,
		},
	)
	app.Start()
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
