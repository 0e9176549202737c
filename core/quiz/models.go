package quiz

import (
	"time"

	"github.com/pogorelof/ai-exam/core"
)

// Question types.
const (
	TypeSingle   = "one"
	TypeMultiple = "multiple"
)

type Theme struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsTest    bool      `json:"is_test"`
	ClassID   int       `json:"class_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Question struct {
	ID      int      `json:"id"`
	ThemeID int      `json:"theme_id"`
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

type Option struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

// NewTheme contains information needed to create a new Theme.
type NewTheme struct {
	Name          string `json:"name" validate:"required"`
	IsTest        bool   `json:"is_test"`
	ClassID       int    `json:"class_id" validate:"required"`
	QuestionCount int    `json:"question_numbers" validate:"required_if=IsTest true,omitempty,min=1,max=50"`
}

func (nt *NewTheme) Validate(v Validator) error {
	nt.Name = core.CleanString(nt.Name)
	return v.Struct(nt)
}

// ThemeDetail is the read model served to class members and owners.
// Option correctness is deliberately withheld.
type ThemeDetail struct {
	Name      string           `json:"name"`
	Questions []QuestionDetail `json:"questions"`
}

type QuestionDetail struct {
	Text    string         `json:"text"`
	Options []OptionDetail `json:"options"`
}

type OptionDetail struct {
	Text string `json:"text"`
}

// GeneratedQuestion is the contract with the external generation service.
type GeneratedQuestion struct {
	Question string            `json:"question"`
	Options  []GeneratedOption `json:"options"`
}

type GeneratedOption struct {
	Option    string `json:"option"`
	IsCorrect bool   `json:"is_correct"`
}

// Validator is the subset of validator.Validate the bindings need.
type Validator interface {
	Struct(s interface{}) error
}
