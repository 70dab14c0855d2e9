package roster

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kmr-srbh/paper-desktop/core"
)

const (
	searchCutoff     = 0.6
	searchCloseLimit = 3
)

var (
	// errors
	ErrDuplicateStudent   = errors.New("a student with this name already exists")
	ErrRollNumberNotFound = errors.New("roll number not found")
)

type (
	Repository interface {
		// ListStudents returns the roster names ordered by name.
		ListStudents(ctx context.Context, exec ...core.DBExecutor) ([]string, error)
		StudentExists(ctx context.Context, name string, exec ...core.DBExecutor) (bool, error)
		// AddStudent returns ErrDuplicateStudent when the name is taken.
		AddStudent(ctx context.Context, name string, exec ...core.DBExecutor) error
		DeleteStudent(ctx context.Context, name string, exec ...core.DBExecutor) error
		RenameStudent(ctx context.Context, oldName, newName string, exec ...core.DBExecutor) error
	}

	StudentReports interface {
		DeleteStudentReport(ctx context.Context, name string, exec ...core.DBExecutor) error
		RenameStudentReport(ctx context.Context, oldName, newName string, exec ...core.DBExecutor) error
	}

	// AttendanceRecords rewrites a name across every recorded date.
	// RenameStudent returns the number of dates changed, or ErrDuplicateStudent
	// when newName already appears in a record.
	AttendanceRecords interface {
		RenameStudent(ctx context.Context, oldName, newName string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		reports StudentReports
		records AttendanceRecords
		logger  core.Logger
	}
)

func NewService(db core.DB, repo Repository, reports StudentReports, records AttendanceRecords, logger core.Logger) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		reports: reports,
		records: records,
		logger:  logger,
	}
}

func (svc *Service) List(ctx context.Context) ([]Student, error) {
	names, err := svc.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return studentsOf(names), nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	names, err := svc.repo.ListStudents(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Search matches a roll number exactly, then names containing q (case-insensitive),
// then the closest names by similarity.
func (svc *Service) Search(ctx context.Context, q string) ([]Student, error) {
	students, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	q = core.CleanString(q, true /* lower */)
	if q == "" {
		return students, nil
	}

	results := make([]Student, 0)
	seen := make(map[int]bool)
	add := func(s Student) {
		if !seen[s.Roll] {
			seen[s.Roll] = true
			results = append(results, s)
		}
	}

	if roll, err := strconv.Atoi(q); err == nil {
		if roll >= 1 && roll <= len(students) {
			add(students[roll-1])
		}
		return results, nil
	}

	for _, s := range students {
		if strings.Contains(strings.ToLower(s.Name), q) {
			add(s)
		}
	}

	type scored struct {
		student Student
		ratio   float64
	}
	matches := make([]scored, 0)
	for _, s := range students {
		if seen[s.Roll] {
			continue
		}
		m := difflib.NewMatcher(strings.Split(q, ""), strings.Split(strings.ToLower(s.Name), ""))
		if r := m.Ratio(); r >= searchCutoff {
			matches = append(matches, scored{student: s, ratio: r})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ratio > matches[j].ratio })
	for i, c := range matches {
		if i == searchCloseLimit {
			break
		}
		add(c.student)
	}
	return results, nil
}

func (svc *Service) Add(ctx context.Context, data NewStudent) (Student, error) {
	if err := data.Validate(); err != nil {
		return Student{}, err
	}
	var st Student
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		exists, err := svc.repo.StudentExists(ctx, data.Name, exec)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateStudent
		}
		if err = svc.repo.AddStudent(ctx, data.Name, exec); err != nil {
			return err
		}
		names, err := svc.repo.ListStudents(ctx, exec)
		if err != nil {
			return err
		}
		st = Student{Roll: rollOf(names, data.Name), Name: data.Name}
		return nil
	})
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

// Remove deletes the student at roll and their report. Their recorded attendance is kept.
func (svc *Service) Remove(ctx context.Context, roll int) (Student, error) {
	var st Student
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if st, err = svc.at(ctx, roll, exec); err != nil {
			return err
		}
		if err = svc.repo.DeleteStudent(ctx, st.Name, exec); err != nil {
			return err
		}
		return svc.reports.DeleteStudentReport(ctx, st.Name, exec)
	})
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

// Rename renames the student at roll in the roster, their report and every recorded date, all or nothing.
func (svc *Service) Rename(ctx context.Context, data RenameStudent) (Student, error) {
	if err := data.Validate(); err != nil {
		return Student{}, err
	}
	var st Student
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		old, err := svc.at(ctx, data.Roll, exec)
		if err != nil {
			return err
		}
		if old.Name == data.Name {
			st = old
			return nil
		}

		exists, err := svc.repo.StudentExists(ctx, data.Name, exec)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateStudent
		}
		if err = svc.repo.RenameStudent(ctx, old.Name, data.Name, exec); err != nil {
			return err
		}
		if err = svc.reports.RenameStudentReport(ctx, old.Name, data.Name, exec); err != nil {
			return err
		}
		n, err := svc.records.RenameStudent(ctx, old.Name, data.Name, exec)
		if err != nil {
			return err
		}

		names, err := svc.repo.ListStudents(ctx, exec)
		if err != nil {
			return err
		}
		st = Student{Roll: rollOf(names, data.Name), Name: data.Name}
		svc.logger.Info("student renamed", map[string]interface{}{"from": old.Name, "to": data.Name, "records": n})
		return nil
	})
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

func (svc *Service) at(ctx context.Context, roll int, exec core.DBExecutor) (Student, error) {
	names, err := svc.repo.ListStudents(ctx, exec)
	if err != nil {
		return Student{}, err
	}
	if roll < 1 || roll > len(names) {
		return Student{}, ErrRollNumberNotFound
	}
	return Student{Roll: roll, Name: names[roll-1]}, nil
}
