package main

import (
	"context"

	"github.com/kmr-srbh/paper-desktop/storage/database"
)

var migrateFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	return migrateFunc(ctx, cli.db, cli.logger, args[0], args[1:]...)
}
