package utils

import (
	"regexp"
	"strings"
	"time"
)

type DateFormat string

const (
	FormatISO8601Date DateFormat = "2006-01-02"
	FormatISO8601     DateFormat = "2006-01-02T15:04:05Z07:00"
	FormatISODateTime DateFormat = "2006-01-02T15:04:05"
	FormatUSDate      DateFormat = "01/02/2006"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T.*)?$`)

// DateValidator parses date strings against the formats accepted for case
// fields, most specific first.
type DateValidator struct {
	supportedFormats []DateFormat
}

func NewDateValidator() *DateValidator {
	return &DateValidator{
		supportedFormats: []DateFormat{
			FormatISO8601,
			FormatISO8601Date,
			FormatISODateTime,
			FormatUSDate,
		},
	}
}

// Parse attempts each supported format in order.
func (dv *DateValidator) Parse(input string) (time.Time, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, false
	}

	for _, format := range dv.supportedFormats {
		if parsed, err := time.Parse(string(format), input); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// IsISODateString reports whether input is an ISO-8601 calendar date or
// datetime. This is the format rule applied during row validation; the
// separate date-of-birth bounds check accepts the wider format set.
func (dv *DateValidator) IsISODateString(input string) bool {
	if !isoDatePattern.MatchString(input) {
		return false
	}

	if _, err := time.Parse(string(FormatISO8601Date), input); err == nil {
		return true
	}
	if _, err := time.Parse(string(FormatISO8601), input); err == nil {
		return true
	}
	if _, err := time.Parse(string(FormatISODateTime), input); err == nil {
		return true
	}

	return false
}

type DOBValidation struct {
	IsValid bool
	Error   string
}

// ValidateDateOfBirth checks that dob parses as a calendar date and falls
// between 1900-01-01 and the current moment, inclusive. This runs as its own
// pass, independent of the generic format rule, so one row can report both a
// format error and a bounds error for the same value.
func (dv *DateValidator) ValidateDateOfBirth(dob string) DOBValidation {
	parsed, ok := dv.Parse(dob)
	if !ok {
		return DOBValidation{IsValid: false, Error: "Invalid date format"}
	}

	minDate := time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	if parsed.Before(minDate) {
		return DOBValidation{IsValid: false, Error: "Date of birth cannot be before 1900"}
	}

	if parsed.After(time.Now()) {
		return DOBValidation{IsValid: false, Error: "Date of birth cannot be in the future"}
	}

	return DOBValidation{IsValid: true}
}
