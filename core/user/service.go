package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core"
)

var (
	// errors
	ErrNotFound         = errors.New("user not found")
	ErrUsernameExists   = errors.New("a user with this username already exists")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrAPITokenNotFound = errors.New("no API token saved for this user")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error)
		SetUserPassword(ctx context.Context, userID int, hash []byte) error
		// SetAPIToken saves or replaces the user's external AI API credential.
		SetAPIToken(ctx context.Context, userID int, token string) error
		GetAPIToken(ctx context.Context, userID int) (string, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		appName string
		from    mail.Address
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		appName: conf.AppName,
		from:    mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail},
	}
}

// CheckUniqueness surfaces username/email collisions as conflicts.
func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		switch err {
		case ErrUsernameExists, ErrEmailExists:
			return core.NewConflictError(err)
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Username:  nu.Username,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetAPIToken(ctx context.Context, usr User, token string) error {
	return svc.repo.SetAPIToken(ctx, usr.ID, core.CleanString(token))
}

func (svc *Service) GetAPIToken(ctx context.Context, userID int) (string, error) {
	return svc.repo.GetAPIToken(ctx, userID)
}

func (svc *Service) sendWelcomeMail(usr User) {
	if usr.Email == "" {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.FirstName + " " + usr.LastName, Address: usr.Email}},
		Subject: "Welcome to " + svc.appName,
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s account \"%s\" has been created. Happy learning!\n",
			usr.FirstName, svc.appName, usr.Username,
		),
	}
	svc.mailSvc.SendMessages(msg)
}
