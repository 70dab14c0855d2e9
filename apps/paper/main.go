package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kmr-srbh/paper-desktop/apps"
	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/session"
)

func main() {
	conf := core.NewConfig()
	logger := apps.NewLogger(conf, os.Stderr, "PAPER : ")

	// set up DB
	db, err := apps.SetUpDB(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	// start CLI
	svc := apps.NewServices(db, conf, logger, apps.NewEmailService(conf, logger))
	cli := commandLine{
		db:     db,
		svc:    svc,
		disp:   session.NewDispatcher(svc, logger),
		logger: logger,
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	if cErr := db.Close(); cErr != nil {
		logger.Error("closing database", cErr)
	}
	if err != nil {
		if err != errHelp {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}
