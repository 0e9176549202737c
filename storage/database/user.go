package database

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core/user"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const userTable = `"user"`

// isUniqueViolation reports whether err is a psql unique violation on the
// given constraint (any constraint when empty).
func isUniqueViolation(err error, constraint string) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == "23505" && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

type userRow struct {
	ID           int       `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Username:     r.Username,
		Email:        r.Email,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	qb := psql.Select("username", "email").
		From(userTable).
		Where(sq.Or{sq.Eq{"username": username}, sq.Eq{"email": email}})
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		qb = qb.Where(sq.NotEq{"id": ids})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}
	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if r.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(rows) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query, args, err := psql.Insert(userTable).
		Columns("first_name", "last_name", "username", "email", "role", "password_hash", "created_at", "updated_at").
		Values(usr.FirstName, usr.LastName, usr.Username, usr.Email, usr.Role, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building insert query")
	}
	if err = repo.db.GetContext(ctx, &usr.ID, query, args...); err != nil {
		switch {
		case isUniqueViolation(err, "uq_user_username"):
			return user.User{}, user.ErrUsernameExists
		case isUniqueViolation(err, "uq_user_email"):
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getUser(ctx context.Context, pred interface{}, args ...interface{}) (user.User, error) {
	query, qargs, err := psql.Select("*").From(userTable).Where(pred, args...).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building select query")
	}
	var row userRow
	if err = repo.db.GetContext(ctx, &row, query, qargs...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"id": id})
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"username": username})
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Or{sq.Eq{"username": username}, sq.Eq{"email": username}})
}

func (repo userRepository) SetUserPassword(ctx context.Context, userID int, hash []byte) error {
	query, args, err := psql.Update(userTable).
		Set("password_hash", hash).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building update query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) SetAPIToken(ctx context.Context, userID int, token string) error {
	query, args, err := psql.Insert("ai_token").
		Columns("user_id", "token").
		Values(userID, token).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building upsert query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "saving API token")
	}
	return nil
}

func (repo userRepository) GetAPIToken(ctx context.Context, userID int) (string, error) {
	query, args, err := psql.Select("token").From("ai_token").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return "", errors.Wrap(err, "building select query")
	}
	var token string
	if err = repo.db.GetContext(ctx, &token, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return "", user.ErrAPITokenNotFound
		}
		return "", errors.Wrap(err, "finding API token")
	}
	return token, nil
}
