package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/user"
)

var (
	// errors
	ErrClassNotFound    = errors.New("class not found")
	ErrClassExists      = errors.New("you already have a class with this title")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNoSuchRequest    = errors.New("no pending request for this student")
	ErrAlreadyEnrolled  = errors.New("enrollment already exists")
	ErrNotEnrolled      = errors.New("no enrollment for this student")
)

// Request statuses returned to students; informative no-ops, not errors.
const (
	RequestSent      = "Request sent"
	AlreadyRequested = "You already send request"
	AlreadyMember    = "Already a member"
)

type (
	Repository interface {
		CreateClass(ctx context.Context, class Class) (Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		UpdateClass(ctx context.Context, class Class) (Class, error)
		DeleteClass(ctx context.Context, id int) error
		QueryClassesByTeacher(ctx context.Context, teacherID int) ([]Class, error)
		QueryClassesByMember(ctx context.Context, studentID int) ([]Class, error)

		GetEnrollment(ctx context.Context, studentID, classID int) (Enrollment, error)
		CreateEnrollment(ctx context.Context, enr Enrollment) error
		// PromoteEnrollment flips a pending request to membership in a single
		// statement; returns ErrNoSuchRequest when no pending row exists.
		PromoteEnrollment(ctx context.Context, studentID, classID int) error
		DeleteEnrollment(ctx context.Context, studentID, classID int, status string) error
		QueryEnrolledUsers(ctx context.Context, classID int, status string) ([]user.User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authorize checks that the caller holds the required relation on the class
// and returns it. Every class-scoped operation funnels through here.
func (svc *Service) Authorize(ctx context.Context, caller user.User, classID int, rel Relation) (Class, error) {
	class, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Class{}, err
	}
	if class.TeacherID == caller.ID {
		return class, nil
	}
	if rel == AsMemberOrOwner {
		enr, err := svc.repo.GetEnrollment(ctx, caller.ID, classID)
		if err == nil && enr.Status == StatusMember {
			return class, nil
		}
		if err != nil && errors.Cause(err) != ErrNotEnrolled {
			return Class{}, err
		}
	}
	return Class{}, ErrPermissionDenied
}

func (svc *Service) CreateClass(ctx context.Context, caller user.User, nc NewClass) (Class, error) {
	if !caller.IsTeacher() {
		return Class{}, ErrPermissionDenied
	}
	class := Class{
		Title:     nc.Title,
		TeacherID: caller.ID,
		CreatedAt: time.Now().UTC(),
	}
	class, err := svc.repo.CreateClass(ctx, class)
	if err != nil {
		if errors.Cause(err) == ErrClassExists {
			return Class{}, core.NewConflictError(ErrClassExists)
		}
		return Class{}, err
	}
	return class, nil
}

func (svc *Service) UpdateClass(ctx context.Context, caller user.User, classID int, uc UpdateClass) (Class, error) {
	class, err := svc.Authorize(ctx, caller, classID, AsOwner)
	if err != nil {
		return Class{}, err
	}
	class.Title = uc.Title
	class, err = svc.repo.UpdateClass(ctx, class)
	if err != nil {
		if errors.Cause(err) == ErrClassExists {
			return Class{}, core.NewConflictError(ErrClassExists)
		}
		return Class{}, err
	}
	return class, nil
}

func (svc *Service) DeleteClass(ctx context.Context, caller user.User, classID int) error {
	if _, err := svc.Authorize(ctx, caller, classID, AsOwner); err != nil {
		return err
	}
	return svc.repo.DeleteClass(ctx, classID)
}

// QueryClasses returns the classes visible to the caller: owned classes for
// a teacher, joined classes for a student.
func (svc *Service) QueryClasses(ctx context.Context, caller user.User) ([]Class, error) {
	if caller.IsTeacher() {
		return svc.repo.QueryClassesByTeacher(ctx, caller.ID)
	}
	return svc.repo.QueryClassesByMember(ctx, caller.ID)
}

// RequestEnrollment records a student's ask to join a class. Repeated
// requests and requests from existing members are no-ops with an
// informative status.
func (svc *Service) RequestEnrollment(ctx context.Context, caller user.User, classID int) (string, error) {
	if !caller.IsStudent() {
		return "", ErrPermissionDenied
	}
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return "", err
	}

	enr, err := svc.repo.GetEnrollment(ctx, caller.ID, classID)
	switch {
	case err == nil && enr.Status == StatusMember:
		return AlreadyMember, nil
	case err == nil:
		return AlreadyRequested, nil
	case errors.Cause(err) != ErrNotEnrolled:
		return "", err
	}

	err = svc.repo.CreateEnrollment(ctx, Enrollment{
		StudentID: caller.ID,
		ClassID:   classID,
		Status:    StatusRequested,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// lost a race against an identical request
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return AlreadyRequested, nil
		}
		return "", err
	}
	return RequestSent, nil
}

// Respond resolves a pending request: accept promotes it to membership,
// reject removes it. Both transitions are single statements, so no
// intermediate state is ever observable.
func (svc *Service) Respond(ctx context.Context, caller user.User, classID int, r Respond) (string, error) {
	if _, err := svc.Authorize(ctx, caller, classID, AsOwner); err != nil {
		return "", err
	}

	if r.Decision == DecisionReject {
		if err := svc.repo.DeleteEnrollment(ctx, r.StudentID, classID, StatusRequested); err != nil {
			return "", err
		}
		return "Request rejected", nil
	}

	err := svc.repo.PromoteEnrollment(ctx, r.StudentID, classID)
	if err != nil {
		if errors.Cause(err) == ErrNoSuchRequest {
			// a concurrent accept may have won; not a failure
			if enr, gerr := svc.repo.GetEnrollment(ctx, r.StudentID, classID); gerr == nil && enr.Status == StatusMember {
				return AlreadyMember, nil
			}
		}
		return "", err
	}
	return "Request accepted", nil
}

// QueryRequests returns the pending requesters of a class; owner only.
func (svc *Service) QueryRequests(ctx context.Context, caller user.User, classID int) ([]user.User, error) {
	if _, err := svc.Authorize(ctx, caller, classID, AsOwner); err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrolledUsers(ctx, classID, StatusRequested)
}

// QueryMembers returns the confirmed members of a class; visible to the
// owning teacher and to members.
func (svc *Service) QueryMembers(ctx context.Context, caller user.User, classID int) ([]user.User, error) {
	if _, err := svc.Authorize(ctx, caller, classID, AsMemberOrOwner); err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrolledUsers(ctx, classID, StatusMember)
}
