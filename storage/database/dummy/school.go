package dummydb

import (
	"context"
	"sort"

	"github.com/pogorelof/ai-exam/core/school"
	"github.com/pogorelof/ai-exam/core/user"
)

type schoolRepository struct {
	db      *schoolTable
	users   *userTable
	pkCount int
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db.school, users: db.user}
}

func (repo *schoolRepository) CreateClass(ctx context.Context, class school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, c := range repo.db.classes {
		if c.TeacherID == class.TeacherID && c.Title == class.Title {
			return school.Class{}, school.ErrClassExists
		}
	}

	repo.pkCount++
	class.ID = repo.pkCount
	repo.db.classes[class.ID] = &class
	return class, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, id int) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if class, ok := repo.db.classes[id]; ok {
		return *class, nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) UpdateClass(ctx context.Context, class school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.classes[class.ID]
	if !ok {
		return school.Class{}, school.ErrClassNotFound
	}
	for _, c := range repo.db.classes {
		if c.ID != class.ID && c.TeacherID == orig.TeacherID && c.Title == class.Title {
			return school.Class{}, school.ErrClassExists
		}
	}
	orig.Title = class.Title
	return *orig, nil
}

func (repo *schoolRepository) DeleteClass(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.classes, id)
	for key := range repo.db.enrollments {
		if key[1] == id {
			delete(repo.db.enrollments, key)
		}
	}
	return nil
}

func (repo *schoolRepository) queryClasses(match func(school.Class) bool) []school.Class {
	classes := make([]school.Class, 0)
	for _, c := range repo.db.classes {
		if match(*c) {
			classes = append(classes, *c)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

func (repo *schoolRepository) QueryClassesByTeacher(ctx context.Context, teacherID int) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.queryClasses(func(c school.Class) bool { return c.TeacherID == teacherID }), nil
}

func (repo *schoolRepository) QueryClassesByMember(ctx context.Context, studentID int) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.queryClasses(func(c school.Class) bool {
		enr, ok := repo.db.enrollments[[2]int{studentID, c.ID}]
		return ok && enr.Status == school.StatusMember
	}), nil
}

func (repo *schoolRepository) GetEnrollment(ctx context.Context, studentID, classID int) (school.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.enrollments[[2]int{studentID, classID}]; ok {
		return *enr, nil
	}
	return school.Enrollment{}, school.ErrNotEnrolled
}

func (repo *schoolRepository) CreateEnrollment(ctx context.Context, enr school.Enrollment) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := [2]int{enr.StudentID, enr.ClassID}
	if _, ok := repo.db.enrollments[key]; ok {
		return school.ErrAlreadyEnrolled
	}
	repo.db.enrollments[key] = &enr
	return nil
}

func (repo *schoolRepository) PromoteEnrollment(ctx context.Context, studentID, classID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	enr, ok := repo.db.enrollments[[2]int{studentID, classID}]
	if !ok || enr.Status != school.StatusRequested {
		return school.ErrNoSuchRequest
	}
	enr.Status = school.StatusMember
	return nil
}

func (repo *schoolRepository) DeleteEnrollment(ctx context.Context, studentID, classID int, status string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := [2]int{studentID, classID}
	enr, ok := repo.db.enrollments[key]
	if !ok || enr.Status != status {
		return school.ErrNoSuchRequest
	}
	delete(repo.db.enrollments, key)
	return nil
}

func (repo *schoolRepository) QueryEnrolledUsers(ctx context.Context, classID int, status string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.users.RLock()
	defer repo.users.RUnlock()

	users := make([]user.User, 0)
	for key, enr := range repo.db.enrollments {
		if key[1] != classID || enr.Status != status {
			continue
		}
		if usr, ok := repo.users.table[key[0]]; ok {
			users = append(users, *usr)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
