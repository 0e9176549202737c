package dummydb

import (
	"sync"

	"github.com/pogorelof/ai-exam/core/quiz"
	"github.com/pogorelof/ai-exam/core/school"
	"github.com/pogorelof/ai-exam/core/user"
)

type (
	DB struct {
		user   *userTable
		school *schoolTable
		quiz   *quizTable
	}

	userTable struct {
		sync.RWMutex
		table  map[int]*user.User
		tokens map[int]string
	}

	schoolTable struct {
		sync.RWMutex
		classes     map[int]*school.Class
		enrollments map[[2]int]*school.Enrollment // (studentID, classID)
	}

	quizTable struct {
		sync.RWMutex
		themes    map[int]*quiz.Theme
		questions map[int][]quiz.Question // by theme ID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:   &userTable{table: make(map[int]*user.User), tokens: make(map[int]string)},
		school: &schoolTable{classes: make(map[int]*school.Class), enrollments: make(map[[2]int]*school.Enrollment)},
		quiz:   &quizTable{themes: make(map[int]*quiz.Theme), questions: make(map[int][]quiz.Question)},
	}
	return db, nil
}
