package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/storage/database"
)

var studentListTable = database.Table(database.Information, database.StudentListTable)

type rosterRepository struct {
	repository
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(exec core.DBExecutor) *rosterRepository {
	return &rosterRepository{repository{exec: exec}}
}

func (repo rosterRepository) ListStudents(ctx context.Context, exec ...core.DBExecutor) ([]string, error) {
	names := make([]string, 0)
	q := "SELECT name FROM " + studentListTable + " ORDER BY name"
	if err := sel(ctx, repo.getExec(exec), &names, q); err != nil {
		return nil, errors.Wrap(err, "listing students")
	}
	return names, nil
}

func (repo rosterRepository) StudentExists(ctx context.Context, name string, exec ...core.DBExecutor) (bool, error) {
	var cnt int
	q := "SELECT count(*) FROM " + studentListTable + " WHERE name = ?"
	if err := get(ctx, repo.getExec(exec), &cnt, q, name); err != nil {
		return false, errors.Wrap(err, "checking student")
	}
	return cnt > 0, nil
}

func (repo rosterRepository) AddStudent(ctx context.Context, name string, exec ...core.DBExecutor) error {
	q := "INSERT INTO " + studentListTable + " (name) VALUES (?)"
	if _, err := run(ctx, repo.getExec(exec), q, name); err != nil {
		if database.IsUniqueViolation(err) {
			return roster.ErrDuplicateStudent
		}
		return errors.Wrap(err, "inserting student")
	}
	return nil
}

func (repo rosterRepository) DeleteStudent(ctx context.Context, name string, exec ...core.DBExecutor) error {
	q := "DELETE FROM " + studentListTable + " WHERE name = ?"
	_, err := run(ctx, repo.getExec(exec), q, name)
	return errors.Wrap(err, "deleting student")
}

func (repo rosterRepository) RenameStudent(ctx context.Context, oldName, newName string, exec ...core.DBExecutor) error {
	q := "UPDATE " + studentListTable + " SET name = ? WHERE name = ?"
	if _, err := run(ctx, repo.getExec(exec), q, newName, oldName); err != nil {
		if database.IsUniqueViolation(err) {
			return roster.ErrDuplicateStudent
		}
		return errors.Wrap(err, "renaming student")
	}
	return nil
}
