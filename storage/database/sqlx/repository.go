package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
)

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps sql.ErrNoRows to notFound
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func get(ctx context.Context, exec core.DBExecutor, dest interface{}, q string, args ...interface{}) error {
	return sqlx.GetContext(ctx, exec, dest, exec.Rebind(q), args...)
}

func sel(ctx context.Context, exec core.DBExecutor, dest interface{}, q string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, exec, dest, exec.Rebind(q), args...)
}

func run(ctx context.Context, exec core.DBExecutor, q string, args ...interface{}) (int64, error) {
	res, err := exec.ExecContext(ctx, exec.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
