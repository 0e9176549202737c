package quiz

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/school"
	"github.com/pogorelof/ai-exam/core/user"
)

var (
	// errors
	ErrThemeNotFound = errors.New("theme not found")

	errNoAPIToken = errors.New("save an AI API token before creating tests")
)

// GenerationError wraps any failure of the external question generation
// call; the whole theme creation is rolled back when it occurs.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "question generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

func IsGenerationError(err error) bool {
	_, ok := errors.Cause(err).(*GenerationError)
	return ok
}

type (
	// Generator produces test questions for a subject, each with exactly one
	// correct option out of four.
	Generator interface {
		Generate(ctx context.Context, apiToken, subject string, count int) ([]GeneratedQuestion, error)
	}

	// ClassDirectory gates class-scoped access; satisfied by school.Service.
	ClassDirectory interface {
		Authorize(ctx context.Context, caller user.User, classID int, rel school.Relation) (school.Class, error)
	}

	// CredentialStore resolves a teacher's stored AI API token; satisfied by
	// user.Service.
	CredentialStore interface {
		GetAPIToken(ctx context.Context, userID int) (string, error)
	}

	Repository interface {
		// CreateTheme persists the theme and all its questions/options in a
		// single transaction.
		CreateTheme(ctx context.Context, theme Theme, questions []Question) (Theme, error)
		GetThemeByID(ctx context.Context, id int) (Theme, error)
		QueryThemeQuestions(ctx context.Context, themeID int) ([]Question, error)
		QueryThemesByClass(ctx context.Context, classID int) ([]Theme, error)
	}

	Service struct {
		repo    Repository
		classes ClassDirectory
		creds   CredentialStore
		gen     Generator
	}
)

func NewService(repo Repository, classes ClassDirectory, creds CredentialStore, gen Generator) *Service {
	return &Service{repo: repo, classes: classes, creds: creds, gen: gen}
}

// CreateTheme creates a theme on a class the caller owns. When the theme is
// a test, questions are generated synchronously and persisted with it; a
// generation failure aborts the whole creation.
func (svc *Service) CreateTheme(ctx context.Context, caller user.User, nt NewTheme) (Theme, error) {
	if _, err := svc.classes.Authorize(ctx, caller, nt.ClassID, school.AsOwner); err != nil {
		return Theme{}, err
	}

	theme := Theme{
		Name:      nt.Name,
		IsTest:    nt.IsTest,
		ClassID:   nt.ClassID,
		CreatedAt: time.Now().UTC(),
	}

	var questions []Question
	if nt.IsTest {
		token, err := svc.creds.GetAPIToken(ctx, caller.ID)
		if err != nil {
			if errors.Cause(err) == user.ErrAPITokenNotFound {
				return Theme{}, core.NewValidationError(errNoAPIToken)
			}
			return Theme{}, err
		}

		generated, err := svc.gen.Generate(ctx, token, nt.Name, nt.QuestionCount)
		if err != nil {
			return Theme{}, &GenerationError{Err: err}
		}
		questions = buildQuestions(generated)
	}

	theme, err := svc.repo.CreateTheme(ctx, theme, questions)
	if err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// GetTheme returns a theme's questions without correctness flags. The
// caller must own the parent class or be one of its confirmed members.
func (svc *Service) GetTheme(ctx context.Context, caller user.User, themeID int) (ThemeDetail, error) {
	theme, err := svc.repo.GetThemeByID(ctx, themeID)
	if err != nil {
		return ThemeDetail{}, err
	}
	if _, err = svc.classes.Authorize(ctx, caller, theme.ClassID, school.AsMemberOrOwner); err != nil {
		return ThemeDetail{}, err
	}

	questions, err := svc.repo.QueryThemeQuestions(ctx, theme.ID)
	if err != nil {
		return ThemeDetail{}, err
	}

	detail := ThemeDetail{Name: theme.Name, Questions: make([]QuestionDetail, 0, len(questions))}
	for _, q := range questions {
		qd := QuestionDetail{Text: q.Text, Options: make([]OptionDetail, 0, len(q.Options))}
		for _, opt := range q.Options {
			qd.Options = append(qd.Options, OptionDetail{Text: opt.Text})
		}
		detail.Questions = append(detail.Questions, qd)
	}
	return detail, nil
}

// QueryThemes lists the themes of a class, gated like theme reads.
func (svc *Service) QueryThemes(ctx context.Context, caller user.User, classID int) ([]Theme, error) {
	if _, err := svc.classes.Authorize(ctx, caller, classID, school.AsMemberOrOwner); err != nil {
		return nil, err
	}
	return svc.repo.QueryThemesByClass(ctx, classID)
}

func buildQuestions(generated []GeneratedQuestion) []Question {
	questions := make([]Question, 0, len(generated))
	for _, g := range generated {
		q := Question{
			Type:    TypeSingle,
			Text:    g.Question,
			Options: make([]Option, 0, len(g.Options)),
		}
		for _, opt := range g.Options {
			q.Options = append(q.Options, Option{Text: opt.Option, IsCorrect: opt.IsCorrect})
		}
		questions = append(questions, q)
	}
	return questions
}
