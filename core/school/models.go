package school

import (
	"time"

	"github.com/pogorelof/ai-exam/core"
)

// Enrollment statuses. A (student, class) pair holds at most one enrollment
// row; absence of a row is the implicit "none" state.
const (
	StatusRequested = "requested"
	StatusMember    = "member"
)

// Relations a caller can be required to hold on a class.
type Relation int

const (
	AsOwner Relation = iota
	AsMemberOrOwner
)

// Decisions a teacher can take on a pending enrollment request.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

type Class struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	TeacherID int       `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Enrollment struct {
	StudentID int       `json:"student_id"`
	ClassID   int       `json:"class_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Title string `json:"title" validate:"required"`
}

func (nc *NewClass) Validate(v Validator) error {
	nc.Title = core.CleanString(nc.Title)
	return v.Struct(nc)
}

// UpdateClass defines what may be modified on an existing Class.
type UpdateClass struct {
	Title string `json:"title" validate:"required"`
}

func (uc *UpdateClass) Validate(v Validator) error {
	uc.Title = core.CleanString(uc.Title)
	return v.Struct(uc)
}

// Respond is a teacher's decision on a student's pending request.
type Respond struct {
	StudentID int    `json:"student_id" validate:"required"`
	Decision  string `json:"decision" validate:"required,oneof=accept reject"`
}

func (r *Respond) Validate(v Validator) error {
	r.Decision = core.CleanString(r.Decision, true /* lower */)
	return v.Struct(r)
}

// Validator is the subset of validator.Validate the bindings need.
type Validator interface {
	Struct(s interface{}) error
}
