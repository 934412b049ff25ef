package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/storage/database"
)

// mockable
var migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
	return database.MigrateCommand(db.DB, command, args...)
}

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	var rest []string
	if len(args) > 0 {
		command = args[0]
		rest = args[1:]
	}
	return migrateFunc(cli.db, command, rest...)
}
