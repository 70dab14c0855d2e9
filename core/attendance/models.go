package attendance

import (
	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/report"
)

// State is a student's presence on a date, stored as a single letter.
type State string

const (
	Present State = "P"
	Absent  State = "A"
)

var ErrInvalidState = errors.New("state must be P (present) or A (absent)")

func (s State) IsValid() bool   { return s == Present || s == Absent }
func (s State) IsPresent() bool { return s == Present }

func (s State) String() string {
	switch s {
	case Present:
		return "Present"
	case Absent:
		return "Absent"
	}
	return string(s)
}

func StateOf(present bool) State {
	if present {
		return Present
	}
	return Absent
}

// ParseState accepts p, present, a and absent in any case.
func ParseState(s string) (State, error) {
	switch core.CleanString(s, true /* lower */) {
	case "p", "present":
		return Present, nil
	case "a", "absent":
		return Absent, nil
	}
	return "", errors.Wrapf(ErrInvalidState, "%q", s)
}

// Phase is the attendance screen state for a date.
type Phase int

const (
	NotRecorded Phase = iota
	Recording
	Recorded
)

func (p Phase) String() string {
	switch p {
	case NotRecorded:
		return "not recorded"
	case Recording:
		return "recording"
	case Recorded:
		return "recorded"
	}
	return "unknown"
}

// Mark is one student's state on a date. Roll is the position in that date's list.
type Mark struct {
	Roll  int    `json:"roll"`
	Name  string `json:"name"`
	State State  `json:"state"`
}

// Record maps student names to their state on one date.
type Record map[string]State

func (r Record) Validate() error {
	_, err := r.Clean()
	return err
}

// Clean returns a copy of r keyed by cleaned names. Names equal once cleaned are rejected.
func (r Record) Clean() (Record, error) {
	if len(r) == 0 {
		return nil, ErrEmptyRecord
	}
	cleaned := make(Record, len(r))
	for name, st := range r {
		n := core.CleanName(name)
		if n == "" {
			return nil, ErrUnknownStudent
		}
		if !st.IsValid() {
			return nil, errors.Wrapf(ErrInvalidState, "%s", n)
		}
		if _, dup := cleaned[n]; dup {
			return nil, errors.Wrapf(ErrDuplicateName, "%q", n)
		}
		cleaned[n] = st
	}
	return cleaned, nil
}

func (r Record) Presence() report.Presence {
	p := make(report.Presence, len(r))
	for name, st := range r {
		p[name] = st.IsPresent()
	}
	return p
}

// Sheet holds the marks of a date being recorded.
type Sheet struct {
	Date  core.Date
	marks []Mark
}

func newSheet(date core.Date, names []string, initial State) *Sheet {
	sh := &Sheet{Date: date, marks: make([]Mark, 0, len(names))}
	for i, name := range names {
		sh.marks = append(sh.marks, Mark{Roll: i + 1, Name: name, State: initial})
	}
	return sh
}

func (sh *Sheet) Mark(roll int, st State) error {
	if !st.IsValid() {
		return ErrInvalidState
	}
	if roll < 1 || roll > len(sh.marks) {
		return ErrRollNumberNotFound
	}
	sh.marks[roll-1].State = st
	return nil
}

// MarkName marks a student by name, matched after cleaning.
func (sh *Sheet) MarkName(name string, st State) error {
	name = core.CleanName(name)
	for _, m := range sh.marks {
		if m.Name == name {
			return sh.Mark(m.Roll, st)
		}
	}
	return errors.Wrapf(ErrUnknownStudent, "%q", name)
}

// Clear marks every student absent.
func (sh *Sheet) Clear() {
	for i := range sh.marks {
		sh.marks[i].State = Absent
	}
}

func (sh *Sheet) Marks() []Mark {
	marks := make([]Mark, len(sh.marks))
	copy(marks, sh.marks)
	return marks
}

func (sh *Sheet) Record() Record {
	r := make(Record, len(sh.marks))
	for _, m := range sh.marks {
		r[m.Name] = m.State
	}
	return r
}
