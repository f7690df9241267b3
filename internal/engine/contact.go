package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-lunar/internal/lunar"
)

// BirthdayEntry is one contact whose birthday is kept in the lunar calendar.
type BirthdayEntry struct {
	// UID is stable across syncs for the same name and birth date.
	UID string `json:"uid"`

	Name string `json:"name"`

	// DateOfBirth is the Gregorian date read from the vCard BDAY field.
	DateOfBirth time.Time `json:"date_of_birth"`

	// LunarBirth is DateOfBirth converted to the lunar calendar.
	LunarBirth lunar.LunarDate `json:"lunar_birth"`

	// NextOccurrence is the Gregorian date of the next lunar birthday,
	// today included. Zero when it falls beyond the lunar table.
	NextOccurrence time.Time `json:"next_occurrence"`

	// AgeNext counts lunar years completed at NextOccurrence.
	AgeNext int `json:"age_next"`
}

// SortUpcoming orders entries by next occurrence, then by name.
// Entries without a next occurrence go last.
func SortUpcoming(entries []BirthdayEntry) {
	slices.SortStableFunc(entries, func(a, b BirthdayEntry) int {
		switch {
		case a.NextOccurrence.IsZero() && !b.NextOccurrence.IsZero():
			return 1
		case !a.NextOccurrence.IsZero() && b.NextOccurrence.IsZero():
			return -1
		}
		if c := a.NextOccurrence.Compare(b.NextOccurrence); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
