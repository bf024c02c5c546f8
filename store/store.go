package store

import (
	"regexp"
	"strconv"
)

// Record is one stored birthday. Date keeps the exact string the user
// entered so it survives save/load without reformatting; Age is optional
// and approximate (nil for legacy entries that never had one).
type Record struct {
	Date string `json:"date"`
	Age  *int   `json:"age"`
}

// Entry pairs a record with its owner, as returned by List.
type Entry struct {
	UserID string
	Record Record
}

// Store holds one birthday record per user.
type Store interface {
	Get(userID string) (Record, bool)
	Set(userID, date string, age *int) error
	Remove(userID string) (bool, error)
	// List returns a snapshot sorted by (month, day) ascending,
	// ties in original insertion order.
	List() ([]Entry, error)
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate validates and splits a YYYY-MM-DD date string. Month and day
// are range-checked (1-12, 1-31); the day is not checked against the
// calendar for its month. Returns ErrInvalidDate on any mismatch.
func ParseDate(s string) (year, month, day int, err error) {
	if !dateRe.MatchString(s) {
		return 0, 0, 0, ErrInvalidDate
	}
	year, _ = strconv.Atoi(s[0:4])
	month, _ = strconv.Atoi(s[5:7])
	day, _ = strconv.Atoi(s[8:10])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, ErrInvalidDate
	}
	return year, month, day, nil
}

// MonthDay returns the record's calendar month and day. The date was
// validated when stored, so a malformed record yields (0, 0).
func (r Record) MonthDay() (month, day int) {
	_, month, day, err := ParseDate(r.Date)
	if err != nil {
		return 0, 0
	}
	return month, day
}

// Year returns the birth year, or 0 if unknown.
func (r Record) Year() int {
	year, _, _, err := ParseDate(r.Date)
	if err != nil {
		return 0
	}
	return year
}
