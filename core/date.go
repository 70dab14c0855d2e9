package core

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

var (
	NowFunc = time.Now // mockable

	ErrInvalidDate = errors.New("invalid date")

	inputLayouts = []string{dateLayout, "02-01-2006", "2-1-2006", "02/01/2006"}
)

// Date is a calendar day without a time zone.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

func Today() Date {
	return DateOf(NowFunc())
}

// ParseDate accepts "2006-01-02", "02-01-2006", "02/01/2006" or an attendance table name ("2_1_2006").
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if d, ok := ParseTableName(s); ok {
		return d, nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, errors.Wrapf(ErrInvalidDate, "%q", s)
}

// ParseTableName parses a "D_M_YYYY" attendance table name.
func ParseTableName(name string) (Date, bool) {
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return Date{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return Date{}, false
		}
		nums[i] = n
	}
	d := NewDate(nums[2], time.Month(nums[1]), nums[0])
	if d.t.Day() != nums[0] || int(d.t.Month()) != nums[1] || nums[2] < 1000 {
		return Date{}, false // out of range values were normalised by time.Date
	}
	return d, true
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool     { return d.t.IsZero() }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// String returns the ISO form "2006-01-02".
func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// TableName returns the name of the day's attendance table, eg. "19_10_2026".
func (d Date) TableName() string {
	return fmt.Sprintf("%d_%d_%d", d.t.Day(), int(d.t.Month()), d.t.Year())
}

// Label returns the human form "19-10-2026" used in file names and reports.
func (d Date) Label() string {
	return fmt.Sprintf("%d-%d-%d", d.t.Day(), int(d.t.Month()), d.t.Year())
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	return errors.Errorf("core.Date: cannot scan %T", src)
}

func (d *Date) scanString(s string) error {
	if parsed, ok := ParseTableName(s); ok {
		*d = parsed
		return nil
	}
	if len(s) >= len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return errors.Wrap(err, "core.Date")
	}
	*d = DateOf(t)
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalParam binds path & query params.
func (d *Date) UnmarshalParam(param string) error {
	return d.UnmarshalText([]byte(param))
}
