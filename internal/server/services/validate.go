package services

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const (
	minPasswordLength = 6

	// maxPasswordBytes is bcrypt's input ceiling; anything longer must be
	// rejected as a field error, not surfaced as a hashing failure.
	maxPasswordBytes = 72
)

// validPassword reports the field message for an unacceptable password,
// or "" when it passes.
func validPassword(s string) string {
	if len(s) < minPasswordLength {
		return "must be at least 6 characters"
	}
	if len(s) > maxPasswordBytes {
		return "must be at most 72 bytes"
	}
	return ""
}

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// validEmail reports whether s looks like an email address.
func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// parseDate accepts a plain calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// sameCalendarDay compares two instants as calendar dates in UTC,
// ignoring time of day.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// fieldCollector accumulates per-field validation messages and produces
// either nil or a *common.ValidationError.
type fieldCollector struct {
	fields []common.FieldError
}

func (c *fieldCollector) add(field, message string) {
	c.fields = append(c.fields, common.FieldError{Field: field, Message: message})
}

func (c *fieldCollector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &common.ValidationError{Fields: c.fields}
}

// runeLen counts characters, not bytes, so multi-byte names are not
// rejected early.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
