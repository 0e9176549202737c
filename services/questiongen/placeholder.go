package questiongensvc

import (
	"context"
	"fmt"

	"github.com/pogorelof/ai-exam/core/quiz"
)

// placeholderGenerator produces deterministic questions without calling any
// external service; used in DEV/TEST mode and as the test stand-in.
type placeholderGenerator struct{}

var _ quiz.Generator = placeholderGenerator{}

func NewPlaceholderGenerator() quiz.Generator {
	return placeholderGenerator{}
}

func (placeholderGenerator) Generate(_ context.Context, _, subject string, count int) ([]quiz.GeneratedQuestion, error) {
	questions := make([]quiz.GeneratedQuestion, 0, count)
	for i := 1; i <= count; i++ {
		q := quiz.GeneratedQuestion{
			Question: fmt.Sprintf("Placeholder question %d about %s?", i, subject),
			Options:  make([]quiz.GeneratedOption, 0, 4),
		}
		for j := 0; j < 4; j++ {
			q.Options = append(q.Options, quiz.GeneratedOption{
				Option:    fmt.Sprintf("Option %c", 'A'+j),
				IsCorrect: j == i%4,
			})
		}
		questions = append(questions, q)
	}
	return questions, nil
}
