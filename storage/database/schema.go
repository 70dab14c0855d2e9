package database

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"

	"github.com/kmr-srbh/paper-desktop/core"
)

// Namespaces
const (
	Information = "paper_information_database"
	Attendance  = "paper_attendance_database"
	Reports     = "paper_reports_database"
)

// Fixed tables
const (
	DataTable          = "paper_data_table"
	StudentListTable   = "paper_student_list_table"
	SettingsTable      = "paper_settings_table"
	StudentReportTable = "paper_student_report_table"
	DailyReportTable   = "paper_daily_report_table"
)

var (
	Namespaces = []string{Information, Attendance, Reports}

	fixedTables = [][2]string{
		{Information, DataTable},
		{Information, StudentListTable},
		{Information, SettingsTable},
		{Reports, StudentReportTable},
		{Reports, DailyReportTable},
	}
)

// Quote quotes an SQL identifier.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Table returns the qualified, quoted name of a table in a namespace.
func Table(ns, name string) string {
	return Quote(ns) + "." + Quote(name)
}

func IsPostgres(exec core.DBExecutor) bool {
	return exec.DriverName() == EnginePostgres
}

// ListTables returns the names of all tables in a namespace, sorted by name.
func ListTables(ctx context.Context, exec core.DBExecutor, ns string) ([]string, error) {
	var (
		q    string
		args []interface{}
	)
	if IsPostgres(exec) {
		q = exec.Rebind("SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name")
		args = append(args, ns)
	} else {
		q = "SELECT name FROM " + Quote(ns) + ".sqlite_master WHERE type = 'table' ORDER BY name"
	}

	names := make([]string, 0)
	if err := sqlx.SelectContext(ctx, exec, &names, q, args...); err != nil {
		return nil, errors.Wrapf(err, "listing tables of %s", ns)
	}
	return names, nil
}

// TableExists checks the catalog instead of probing the table, so it is safe inside a postgres transaction.
func TableExists(ctx context.Context, exec core.DBExecutor, ns, table string) (bool, error) {
	var (
		q    string
		args []interface{}
	)
	if IsPostgres(exec) {
		q = "SELECT count(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		args = []interface{}{ns, table}
	} else {
		q = "SELECT count(*) FROM " + Quote(ns) + ".sqlite_master WHERE type = 'table' AND name = ?"
		args = []interface{}{table}
	}

	var cnt int
	if err := sqlx.GetContext(ctx, exec, &cnt, exec.Rebind(q), args...); err != nil {
		return false, errors.Wrapf(err, "looking up %s.%s", ns, table)
	}
	return cnt > 0, nil
}

// Purge drops every attendance table and empties every fixed table.
func Purge(ctx context.Context, exec core.DBExecutor) error {
	tables, err := ListTables(ctx, exec, Attendance)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if _, err = exec.ExecContext(ctx, "DROP TABLE "+Table(Attendance, t)); err != nil {
			return errors.Wrapf(err, "dropping %s", t)
		}
	}
	for _, ft := range fixedTables {
		if _, err = exec.ExecContext(ctx, "DELETE FROM "+Table(ft[0], ft[1])); err != nil {
			return errors.Wrapf(err, "clearing %s", ft[1])
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique / primary key constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
