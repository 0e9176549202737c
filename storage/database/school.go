package database

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core/school"
	"github.com/pogorelof/ai-exam/core/user"
)

type classRow struct {
	ID        int       `db:"id"`
	Title     string    `db:"title"`
	TeacherID int       `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r classRow) toClass() school.Class {
	return school.Class{ID: r.ID, Title: r.Title, TeacherID: r.TeacherID, CreatedAt: r.CreatedAt}
}

type enrollmentRow struct {
	StudentID int       `db:"student_id"`
	ClassID   int       `db:"class_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func toClasses(rows []classRow) []school.Class {
	classes := make([]school.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toClass())
	}
	return classes
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) CreateClass(ctx context.Context, class school.Class) (school.Class, error) {
	query, args, err := psql.Insert("class").
		Columns("title", "teacher_id", "created_at").
		Values(class.Title, class.TeacherID, class.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return school.Class{}, errors.Wrap(err, "building insert query")
	}
	if err = repo.db.GetContext(ctx, &class.ID, query, args...); err != nil {
		if isUniqueViolation(err, "uq_teacher_title") {
			return school.Class{}, school.ErrClassExists
		}
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return class, nil
}

func (repo schoolRepository) GetClassByID(ctx context.Context, id int) (school.Class, error) {
	query, args, err := psql.Select("*").From("class").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return school.Class{}, errors.Wrap(err, "building select query")
	}
	var row classRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, errors.Wrap(err, "finding class")
	}
	return row.toClass(), nil
}

func (repo schoolRepository) UpdateClass(ctx context.Context, class school.Class) (school.Class, error) {
	query, args, err := psql.Update("class").
		Set("title", class.Title).
		Where(sq.Eq{"id": class.ID}).
		ToSql()
	if err != nil {
		return school.Class{}, errors.Wrap(err, "building update query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "uq_teacher_title") {
			return school.Class{}, school.ErrClassExists
		}
		return school.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Class{}, school.ErrClassNotFound
	}
	return class, nil
}

func (repo schoolRepository) DeleteClass(ctx context.Context, id int) error {
	query, args, err := psql.Delete("class").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}

func (repo schoolRepository) QueryClassesByTeacher(ctx context.Context, teacherID int) ([]school.Class, error) {
	query, args, err := psql.Select("*").
		From("class").
		Where(sq.Eq{"teacher_id": teacherID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}
	rows := make([]classRow, 0)
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return toClasses(rows), nil
}

func (repo schoolRepository) QueryClassesByMember(ctx context.Context, studentID int) ([]school.Class, error) {
	query, args, err := psql.Select("c.*").
		From("class c").
		Join("enrollment e ON e.class_id = c.id").
		Where(sq.Eq{"e.student_id": studentID, "e.status": school.StatusMember}).
		OrderBy("c.created_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}
	rows := make([]classRow, 0)
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return toClasses(rows), nil
}

func (repo schoolRepository) GetEnrollment(ctx context.Context, studentID, classID int) (school.Enrollment, error) {
	query, args, err := psql.Select("*").
		From("enrollment").
		Where(sq.Eq{"student_id": studentID, "class_id": classID}).
		ToSql()
	if err != nil {
		return school.Enrollment{}, errors.Wrap(err, "building select query")
	}
	var row enrollmentRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return school.Enrollment{}, school.ErrNotEnrolled
		}
		return school.Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
	return school.Enrollment{StudentID: row.StudentID, ClassID: row.ClassID, Status: row.Status, CreatedAt: row.CreatedAt}, nil
}

func (repo schoolRepository) CreateEnrollment(ctx context.Context, enr school.Enrollment) error {
	query, args, err := psql.Insert("enrollment").
		Columns("student_id", "class_id", "status", "created_at").
		Values(enr.StudentID, enr.ClassID, enr.Status, enr.CreatedAt).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building insert query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "pk_enrollment") {
			return school.ErrAlreadyEnrolled
		}
		return errors.Wrap(err, "inserting enrollment")
	}
	return nil
}

func (repo schoolRepository) PromoteEnrollment(ctx context.Context, studentID, classID int) error {
	// a single UPDATE, so the REQUESTED -> MEMBER transition is atomic
	query, args, err := psql.Update("enrollment").
		Set("status", school.StatusMember).
		Where(sq.Eq{"student_id": studentID, "class_id": classID, "status": school.StatusRequested}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building update query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "promoting enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrNoSuchRequest
	}
	return nil
}

func (repo schoolRepository) DeleteEnrollment(ctx context.Context, studentID, classID int, status string) error {
	query, args, err := psql.Delete("enrollment").
		Where(sq.Eq{"student_id": studentID, "class_id": classID, "status": status}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrNoSuchRequest
	}
	return nil
}

func (repo schoolRepository) QueryEnrolledUsers(ctx context.Context, classID int, status string) ([]user.User, error) {
	query, args, err := psql.Select("u.*").
		From(userTable + " u").
		Join("enrollment e ON e.student_id = u.id").
		Where(sq.Eq{"e.class_id": classID, "e.status": status}).
		OrderBy("e.created_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}
	rows := make([]userRow, 0)
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrolled users")
	}
	return toUsers(rows), nil
}
