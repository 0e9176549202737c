package main

import (
	"context"
	"time"

	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/user"
)

// addTeacher creates a teacher account, bypassing the API self-registration flow.
func (cli *commandLine) addTeacher(uname, email, first, last, pwd string) error {
	ctx := context.Background()
	now := time.Now().UTC()

	usr := user.User{
		FirstName: core.CleanString(first),
		LastName:  core.CleanString(last),
		Username:  core.CleanString(uname, true /* lower */),
		Email:     core.CleanString(email, true /* lower */),
		Role:      user.RoleTeacher,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := cli.usrRepo.CheckUsernameUniqueness(ctx, usr.Username, usr.Email); err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
