package database

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core/quiz"
)

type themeRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	IsTest    bool      `db:"is_test"`
	ClassID   int       `db:"class_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r themeRow) toTheme() quiz.Theme {
	return quiz.Theme{ID: r.ID, Name: r.Name, IsTest: r.IsTest, ClassID: r.ClassID, CreatedAt: r.CreatedAt}
}

type questionRow struct {
	ID      int    `db:"id"`
	ThemeID int    `db:"theme_id"`
	Type    string `db:"type"`
	Text    string `db:"text"`
}

type optionRow struct {
	ID         int    `db:"id"`
	QuestionID int    `db:"test_question_id"`
	Text       string `db:"text"`
	IsCorrect  bool   `db:"is_correct"`
}

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *sqlx.DB) *quizRepository {
	return &quizRepository{db: db}
}

// CreateTheme inserts the theme and its questions/options in one
// transaction; any failure leaves no partial theme behind.
func (repo quizRepository) CreateTheme(ctx context.Context, theme quiz.Theme, questions []quiz.Question) (quiz.Theme, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return quiz.Theme{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Insert("theme").
		Columns("name", "is_test", "class_id", "created_at").
		Values(theme.Name, theme.IsTest, theme.ClassID, theme.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return quiz.Theme{}, errors.Wrap(err, "building insert query")
	}
	if err = tx.GetContext(ctx, &theme.ID, query, args...); err != nil {
		return quiz.Theme{}, errors.Wrap(err, "inserting theme")
	}

	for _, q := range questions {
		query, args, err = psql.Insert("test_question").
			Columns("theme_id", "type", "text").
			Values(theme.ID, q.Type, q.Text).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return quiz.Theme{}, errors.Wrap(err, "building insert query")
		}
		var questionID int
		if err = tx.GetContext(ctx, &questionID, query, args...); err != nil {
			return quiz.Theme{}, errors.Wrap(err, "inserting question")
		}

		if len(q.Options) == 0 {
			continue
		}
		ob := psql.Insert("test_option").Columns("test_question_id", "text", "is_correct")
		for _, opt := range q.Options {
			ob = ob.Values(questionID, opt.Text, opt.IsCorrect)
		}
		if query, args, err = ob.ToSql(); err != nil {
			return quiz.Theme{}, errors.Wrap(err, "building insert query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return quiz.Theme{}, errors.Wrap(err, "inserting options")
		}
	}

	if err = tx.Commit(); err != nil {
		return quiz.Theme{}, errors.Wrap(err, "committing theme")
	}
	return theme, nil
}

func (repo quizRepository) GetThemeByID(ctx context.Context, id int) (quiz.Theme, error) {
	query, args, err := psql.Select("*").From("theme").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return quiz.Theme{}, errors.Wrap(err, "building select query")
	}
	var row themeRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return quiz.Theme{}, quiz.ErrThemeNotFound
		}
		return quiz.Theme{}, errors.Wrap(err, "finding theme")
	}
	return row.toTheme(), nil
}

func (repo quizRepository) QueryThemeQuestions(ctx context.Context, themeID int) ([]quiz.Question, error) {
	query, args, err := psql.Select("*").
		From("test_question").
		Where(sq.Eq{"theme_id": themeID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}
	qRows := make([]questionRow, 0)
	if err = repo.db.SelectContext(ctx, &qRows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}

	query, args, err = psql.Select("o.*").
		From("test_option o").
		Join("test_question q ON q.id = o.test_question_id").
		Where(sq.Eq{"q.theme_id": themeID}).
		OrderBy("o.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}
	oRows := make([]optionRow, 0)
	if err = repo.db.SelectContext(ctx, &oRows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying options")
	}

	optionsByQuestion := make(map[int][]quiz.Option, len(qRows))
	for _, o := range oRows {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], quiz.Option{
			ID:         o.ID,
			QuestionID: o.QuestionID,
			Text:       o.Text,
			IsCorrect:  o.IsCorrect,
		})
	}

	questions := make([]quiz.Question, 0, len(qRows))
	for _, q := range qRows {
		questions = append(questions, quiz.Question{
			ID:      q.ID,
			ThemeID: q.ThemeID,
			Type:    q.Type,
			Text:    q.Text,
			Options: optionsByQuestion[q.ID],
		})
	}
	return questions, nil
}

func (repo quizRepository) QueryThemesByClass(ctx context.Context, classID int) ([]quiz.Theme, error) {
	query, args, err := psql.Select("*").
		From("theme").
		Where(sq.Eq{"class_id": classID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}
	rows := make([]themeRow, 0)
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying themes")
	}
	themes := make([]quiz.Theme, 0, len(rows))
	for _, r := range rows {
		themes = append(themes, r.toTheme())
	}
	return themes, nil
}
