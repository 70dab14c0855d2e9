package report

import (
	"github.com/shopspring/decimal"

	"github.com/kmr-srbh/paper-desktop/core"
)

// Remark flags a student's attendance against the class minimum.
type Remark string

const (
	RemarkNone      Remark = ""
	RemarkExcellent Remark = "Excellent"
	RemarkWarning   Remark = "Warning"
	RemarkCritical  Remark = "Critical"
)

var (
	hundred       = decimal.NewFromInt(100)
	criticalBound = decimal.NewFromInt(50)
	topBound      = decimal.NewFromInt(90)
)

// Presence maps a student name to whether they were present.
type Presence map[string]bool

// Entry is one row of a day's attendance, in roll order.
type Entry struct {
	Name    string
	Present bool
}

// Daily is the summary of one recorded date.
type Daily struct {
	Date       core.Date       `json:"date"`
	Present    int             `json:"present"`
	Absent     int             `json:"absent"`
	Percentage decimal.Decimal `json:"attendance_percentage"`
}

func (d Daily) Total() int { return d.Present + d.Absent }

// Student is the cumulative attendance of one student.
type Student struct {
	Name        string `json:"name"`
	TotalDays   int    `json:"total_days"`
	DaysPresent int    `json:"days_present"`
}

// StudentRow is a Student report line as displayed.
type StudentRow struct {
	Roll        int             `json:"roll"`
	Name        string          `json:"name"`
	DaysPresent int             `json:"days_present"`
	TotalDays   int             `json:"total_days"`
	Percentage  decimal.Decimal `json:"percentage"`
	Remark      Remark          `json:"remark"`
}

// ChartPoint is one day of the attendance chart.
type ChartPoint struct {
	Day        int             `json:"day"`
	Date       core.Date       `json:"date"`
	Percentage decimal.Decimal `json:"percentage"`
}

// DetailLine is a student in the present or absent list of a day.
// No is the position in the list, Roll the position in that day's record.
type DetailLine struct {
	No   int    `json:"no"`
	Name string `json:"name"`
	Roll int    `json:"roll"`
}

type DailyDetail struct {
	Daily
	PresentList []DetailLine `json:"present_list"`
	AbsentList  []DetailLine `json:"absent_list"`
}

// Percentage returns part/total*100 rounded half away from zero to places. A zero total gives zero.
func Percentage(part, total int, places int32) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(places)
}

// RemarkFor grades a percentage: Warning when 50 < p <= minimum, else Excellent above 90, else Critical at 50 or below.
func RemarkFor(p decimal.Decimal, minimum int) Remark {
	switch {
	case p.GreaterThan(criticalBound) && p.LessThanOrEqual(decimal.NewFromInt(int64(minimum))):
		return RemarkWarning
	case p.GreaterThan(topBound):
		return RemarkExcellent
	case p.LessThanOrEqual(criticalBound):
		return RemarkCritical
	}
	return RemarkNone
}
