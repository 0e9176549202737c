package main

import (
	"github.com/pogorelof/ai-exam/storage/database"
)

var migrationRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	var arguments []string
	if len(args) > 1 {
		arguments = args[1:]
	}
	return migrationRunFunc(cli.db, args[0], arguments...)
}
