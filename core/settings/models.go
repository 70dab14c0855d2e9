package settings

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
)

// Frequency is how often the attendance history is backed up.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
)

const (
	DefaultMinimumAttendance = 75
	DefaultBackupFrequency   = Monthly
)

var (
	ErrInvalidFrequency = errors.New("backup frequency must be one of daily, weekly or monthly")

	frequencyNames = [...]string{"daily", "weekly", "monthly"}
	frequencyDays  = [...]int{1, 7, 30}
)

func (f Frequency) IsValid() bool { return f >= Daily && f <= Monthly }

// Days is the number of days between two backups.
func (f Frequency) Days() int {
	if !f.IsValid() {
		return frequencyDays[DefaultBackupFrequency]
	}
	return frequencyDays[f]
}

func (f Frequency) String() string {
	if !f.IsValid() {
		return strconv.Itoa(int(f))
	}
	return frequencyNames[f]
}

// ParseFrequency accepts a name ("weekly") or an index ("1").
func ParseFrequency(s string) (Frequency, error) {
	s = core.CleanString(s, true /* lower */)
	for i, name := range frequencyNames {
		if s == name {
			return Frequency(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Frequency(n).IsValid() {
		return Frequency(n), nil
	}
	return 0, errors.Wrapf(ErrInvalidFrequency, "%q", s)
}

type Settings struct {
	CheckPresent      bool      `json:"check_present"`
	MinimumAttendance int       `json:"minimum_attendance"`
	BackupFrequency   Frequency `json:"backup_frequency"`
	BackupDate        core.Date `json:"backup_date"`
}

// Defaults returns the settings of a new class.
func Defaults(today core.Date) Settings {
	return Settings{
		CheckPresent:      false,
		MinimumAttendance: DefaultMinimumAttendance,
		BackupFrequency:   DefaultBackupFrequency,
		BackupDate:        today.AddDays(DefaultBackupFrequency.Days()),
	}
}

// BackupDue is true once the scheduled backup date is reached, including when it was missed.
func (s Settings) BackupDue(today core.Date) bool {
	return !today.Before(s.BackupDate)
}

// Reschedule moves the next backup to today + the frequency.
func (s *Settings) Reschedule(today core.Date) {
	s.BackupDate = today.AddDays(s.BackupFrequency.Days())
}

// Update holds the user editable settings.
type Update struct {
	CheckPresent      bool      `json:"check_present"`
	MinimumAttendance int       `json:"minimum_attendance" validate:"min=0,max=100"`
	BackupFrequency   Frequency `json:"backup_frequency" validate:"min=0,max=2"`
}

func (u Update) Validate() error {
	return core.Validate.Struct(u)
}

func (s Settings) asUpdate() Update {
	return Update{
		CheckPresent:      s.CheckPresent,
		MinimumAttendance: s.MinimumAttendance,
		BackupFrequency:   s.BackupFrequency,
	}
}
