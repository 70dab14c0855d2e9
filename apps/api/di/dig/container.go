package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/kmr-srbh/paper-desktop/apps"
	echoapi "github.com/kmr-srbh/paper-desktop/apps/api/echo"
	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/session"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	return apps.NewLogger(conf, os.Stdout, "API : ")
}

func newDBLogger(conf *core.Config) core.Logger {
	return apps.NewLogger(conf, os.Stdout, "DB : ")
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	db, err := apps.SetUpDB(context.Background(), conf, loggerParam.Logger)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(apps.NewEmailService))
	must(c.Provide(apps.NewServices))
	must(c.Provide(session.NewDispatcher))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
