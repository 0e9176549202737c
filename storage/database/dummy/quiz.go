package dummydb

import (
	"context"
	"sort"

	"github.com/pogorelof/ai-exam/core/quiz"
)

type quizRepository struct {
	db        *quizTable
	pkCount   int
	optionPKs int
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db.quiz}
}

func (repo *quizRepository) CreateTheme(ctx context.Context, theme quiz.Theme, questions []quiz.Question) (quiz.Theme, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.pkCount++
	theme.ID = repo.pkCount
	repo.db.themes[theme.ID] = &theme

	stored := make([]quiz.Question, 0, len(questions))
	for _, q := range questions {
		repo.pkCount++
		q.ID = repo.pkCount
		q.ThemeID = theme.ID
		for i := range q.Options {
			repo.optionPKs++
			q.Options[i].ID = repo.optionPKs
			q.Options[i].QuestionID = q.ID
		}
		stored = append(stored, q)
	}
	repo.db.questions[theme.ID] = stored
	return theme, nil
}

func (repo *quizRepository) GetThemeByID(ctx context.Context, id int) (quiz.Theme, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if theme, ok := repo.db.themes[id]; ok {
		return *theme, nil
	}
	return quiz.Theme{}, quiz.ErrThemeNotFound
}

func (repo *quizRepository) QueryThemeQuestions(ctx context.Context, themeID int) ([]quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	questions := make([]quiz.Question, len(repo.db.questions[themeID]))
	copy(questions, repo.db.questions[themeID])
	return questions, nil
}

func (repo *quizRepository) QueryThemesByClass(ctx context.Context, classID int) ([]quiz.Theme, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	themes := make([]quiz.Theme, 0)
	for _, t := range repo.db.themes {
		if t.ClassID == classID {
			themes = append(themes, *t)
		}
	}
	sort.Slice(themes, func(i, j int) bool { return themes[i].ID < themes[j].ID })
	return themes, nil
}
