package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/storage/database"
)

var dataTable = database.Table(database.Information, database.DataTable)

type (
	classRepository struct {
		repository
	}

	profileRow struct {
		PIN       string      `db:"pin"`
		ClassName null.String `db:"class_name"`
	}
)

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(exec core.DBExecutor) *classRepository {
	return &classRepository{repository{exec: exec}}
}

func (repo classRepository) GetProfile(ctx context.Context, exec ...core.DBExecutor) (class.Profile, error) {
	var row profileRow
	q := "SELECT pin, class_name FROM " + dataTable + " LIMIT 1"
	if err := get(ctx, repo.getExec(exec), &row, q); err != nil {
		return class.Profile{}, trapNoRowsErr(err, class.ErrNoPIN, "getting class profile")
	}
	return class.Profile{PINHash: []byte(row.PIN), Name: row.ClassName}, nil
}

func (repo classRepository) CreateProfile(ctx context.Context, p class.Profile, exec ...core.DBExecutor) error {
	q := "INSERT INTO " + dataTable + " (pin, class_name) VALUES (?, ?)"
	_, err := run(ctx, repo.getExec(exec), q, string(p.PINHash), p.Name)
	return errors.Wrap(err, "inserting class profile")
}

func (repo classRepository) UpdateProfile(ctx context.Context, p class.Profile, exec ...core.DBExecutor) error {
	q := "UPDATE " + dataTable + " SET pin = ?, class_name = ?"
	_, err := run(ctx, repo.getExec(exec), q, string(p.PINHash), p.Name)
	return errors.Wrap(err, "updating class profile")
}

func (repo classRepository) Purge(ctx context.Context, exec ...core.DBExecutor) error {
	return database.Purge(ctx, repo.getExec(exec))
}
