package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmr-srbh/paper-desktop/core"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in      string
		want    Frequency
		wantErr bool
	}{
		{in: "daily", want: Daily},
		{in: " Weekly ", want: Weekly},
		{in: "MONTHLY", want: Monthly},
		{in: "0", want: Daily},
		{in: "2", want: Monthly},
		{in: "3", wantErr: true},
		{in: "yearly", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFrequency(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFrequency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFrequency_Days(t *testing.T) {
	assert.Equal(t, 1, Daily.Days())
	assert.Equal(t, 7, Weekly.Days())
	assert.Equal(t, 30, Monthly.Days())
	assert.Equal(t, 30, Frequency(9).Days())
	assert.Equal(t, "weekly", Weekly.String())
}

func TestSettings_Schedule(t *testing.T) {
	today := core.NewDate(2024, time.January, 31)
	s := Defaults(today)

	assert.False(t, s.CheckPresent)
	assert.Equal(t, 75, s.MinimumAttendance)
	assert.Equal(t, Monthly, s.BackupFrequency)
	assert.Equal(t, "2024-03-01", s.BackupDate.String())

	assert.False(t, s.BackupDue(today))
	assert.True(t, s.BackupDue(s.BackupDate))
	assert.True(t, s.BackupDue(s.BackupDate.AddDays(3)), "a missed backup is still due")

	s.BackupFrequency = Weekly
	s.Reschedule(today)
	assert.Equal(t, "2024-02-07", s.BackupDate.String())
}

func TestUpdate_Validate(t *testing.T) {
	tests := []struct {
		name      string
		update    Update
		wantField string
	}{
		{name: "valid", update: Update{MinimumAttendance: 80, BackupFrequency: Daily}},
		{name: "bounds", update: Update{MinimumAttendance: 100, BackupFrequency: Monthly}},
		{name: "minimum too high", update: Update{MinimumAttendance: 101}, wantField: "minimum_attendance"},
		{name: "minimum negative", update: Update{MinimumAttendance: -1}, wantField: "minimum_attendance"},
		{name: "bad frequency", update: Update{MinimumAttendance: 75, BackupFrequency: 3}, wantField: "backup_frequency"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.update.Validate()
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			fields, ok := core.FieldErrors(err)
			require.True(t, ok)
			assert.Contains(t, fields, tc.wantField)
		})
	}
}
