package session

import (
	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

// Command is a user action handled by the Dispatcher.
type Command interface {
	command() string
}

type (
	CreatePIN struct {
		PIN string `json:"pin"`
	}

	Unlock struct {
		PIN string `json:"pin"`
	}

	ChangePIN struct {
		OldPIN string `json:"old_pin"`
		NewPIN string `json:"new_pin"`
	}

	CreateClass struct {
		Name string `json:"name"`
	}

	RenameClass struct {
		Name string `json:"name"`
	}

	DeleteClass struct {
		PIN string `json:"pin"`
	}

	AddStudent struct {
		Name string `json:"name"`
	}

	RemoveStudent struct {
		Roll int `json:"roll"`
	}

	RenameStudent struct {
		Roll int    `json:"roll"`
		Name string `json:"name"`
	}

	// BeginAttendance opens the sheet of Date, today when zero.
	BeginAttendance struct {
		Date core.Date
	}

	// MarkStudent marks a student of the open sheet, by Roll or, when Roll is 0, by Name.
	MarkStudent struct {
		Roll  int              `json:"roll"`
		Name  string           `json:"name"`
		State attendance.State `json:"state"`
	}

	ClearSheet struct{}

	// SaveAttendance records the open sheet. A non-nil Record is saved instead, for Date or today.
	SaveAttendance struct {
		Date   core.Date         `json:"date"`
		Record attendance.Record `json:"record"`
	}

	EditAttendance struct {
		Date  core.Date        `json:"date"`
		Roll  int              `json:"roll"`
		State attendance.State `json:"state"`
	}

	SaveSettings struct {
		settings.Update
	}

	ResetSettings struct{}

	Export struct {
		Workbook bool `json:"workbook"`
		Reveal   bool `json:"reveal"`
	}
)

func (CreatePIN) command() string       { return "create pin" }
func (Unlock) command() string          { return "unlock" }
func (ChangePIN) command() string       { return "change pin" }
func (CreateClass) command() string     { return "create class" }
func (RenameClass) command() string     { return "rename class" }
func (DeleteClass) command() string     { return "delete class" }
func (AddStudent) command() string      { return "add student" }
func (RemoveStudent) command() string   { return "remove student" }
func (RenameStudent) command() string   { return "rename student" }
func (BeginAttendance) command() string { return "begin attendance" }
func (MarkStudent) command() string     { return "mark student" }
func (ClearSheet) command() string      { return "clear sheet" }
func (SaveAttendance) command() string  { return "save attendance" }
func (EditAttendance) command() string  { return "edit attendance" }
func (SaveSettings) command() string    { return "save settings" }
func (ResetSettings) command() string   { return "reset settings" }
func (Export) command() string          { return "export" }

// Name returns the display name of cmd.
func Name(cmd Command) string { return cmd.command() }

// EventKind tells what a dispatched command changed.
type EventKind int

const (
	PINCreated EventKind = iota + 1
	Unlocked
	PINChanged
	ClassCreated
	ClassRenamed
	ClassDeleted
	StudentAdded
	StudentRemoved
	StudentRenamed
	AttendanceBegun
	StudentMarked
	SheetCleared
	AttendanceSaved
	AttendanceEdited
	SettingsSaved
	SettingsReset
	Exported
)

var eventNames = map[EventKind]string{
	PINCreated:       "pin.created",
	Unlocked:         "unlocked",
	PINChanged:       "pin.changed",
	ClassCreated:     "class.created",
	ClassRenamed:     "class.renamed",
	ClassDeleted:     "class.deleted",
	StudentAdded:     "student.added",
	StudentRemoved:   "student.removed",
	StudentRenamed:   "student.renamed",
	AttendanceBegun:  "attendance.begun",
	StudentMarked:    "attendance.marked",
	SheetCleared:     "attendance.cleared",
	AttendanceSaved:  "attendance.saved",
	AttendanceEdited: "attendance.edited",
	SettingsSaved:    "settings.saved",
	SettingsReset:    "settings.reset",
	Exported:         "exported",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is the outcome of a command. Data holds what the command produced, if anything.
type Event struct {
	Kind EventKind   `json:"kind"`
	Data interface{} `json:"data,omitempty"`
}
