package roster

import (
	"github.com/kmr-srbh/paper-desktop/core"
)

// Student is a roster member. Roll is its 1-based position in the roster ordered by name.
type Student struct {
	Roll int    `json:"roll"`
	Name string `json:"name"`
}

type NewStudent struct {
	Name string `json:"name" validate:"notblank,max=40"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanName(ns.Name)
	return core.Validate.Struct(ns)
}

type RenameStudent struct {
	Roll int    `json:"roll" validate:"min=1"`
	Name string `json:"name" validate:"notblank,max=40"`
}

func (rs *RenameStudent) Validate() error {
	rs.Name = core.CleanName(rs.Name)
	return core.Validate.Struct(rs)
}

func studentsOf(names []string) []Student {
	students := make([]Student, 0, len(names))
	for i, name := range names {
		students = append(students, Student{Roll: i + 1, Name: name})
	}
	return students
}

func rollOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i + 1
		}
	}
	return 0
}
