package importsController

import (
	"regexp"
	"strings"

	. "server/internal/models"
	"server/internal/utils"
)

// Raw CSV column names expected in an upload. Unknown columns are ignored
// and missing ones read as empty.
const (
	columnCaseID        = "case_id"
	columnApplicantName = "applicant_name"
	columnDOB           = "dob"
	columnEmail         = "email"
	columnPhone         = "phone"
	columnCategory      = "category"
	columnPriority      = "priority"
	columnNotes         = "notes"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// E.164: "+" followed by 1-15 digits, first digit 1-9.
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{0,14}$`)
)

// RowValidator normalizes a raw row and checks the result against the case
// contract. Validation never fails the caller: a bad row is reported in the
// outcome, never returned as an error.
type RowValidator struct {
	dates *utils.DateValidator
}

func NewRowValidator() *RowValidator {
	return &RowValidator{dates: utils.NewDateValidator()}
}

// ValidateRow builds the normalized fields for one row, then collects every
// rule violation. All simultaneous failures are reported, not just the
// first. The date-of-birth bounds check runs as an independent pass after
// the format rules, so a single dob value can contribute two errors.
func (v *RowValidator) ValidateRow(record RawRow, rowNumber int) RowValidation {
	fields := CaseFields{
		CaseID:        strings.TrimSpace(record[columnCaseID]),
		ApplicantName: utils.NormalizeApplicantName(record[columnApplicantName]),
		DOB:           record[columnDOB],
		Email:         utils.NormalizeEmail(record[columnEmail]),
		Phone:         utils.NormalizePhone(record[columnPhone]),
		Category:      strings.ToUpper(strings.TrimSpace(record[columnCategory])),
		Priority:      normalizePriority(record[columnPriority]),
		Notes:         optionalString(record[columnNotes]),
	}

	var errors []FieldError

	if fields.CaseID == "" {
		errors = append(errors, FieldError{
			Field:   "caseId",
			Message: "caseId is required",
			Value:   record[columnCaseID],
		})
	}

	if fields.ApplicantName == "" {
		errors = append(errors, FieldError{
			Field:   "applicantName",
			Message: "applicantName is required",
			Value:   record[columnApplicantName],
		})
	}

	if fields.DOB == "" {
		errors = append(errors, FieldError{
			Field:   "dob",
			Message: "dob is required",
			Value:   record[columnDOB],
		})
	} else if !v.dates.IsISODateString(fields.DOB) {
		errors = append(errors, FieldError{
			Field:   "dob",
			Message: "dob must be a valid ISO 8601 date string",
			Value:   fields.DOB,
		})
	}

	if fields.Email != nil && !emailPattern.MatchString(*fields.Email) {
		errors = append(errors, FieldError{
			Field:   "email",
			Message: "email must be a valid email address",
			Value:   *fields.Email,
		})
	}

	if fields.Phone != nil && !phonePattern.MatchString(*fields.Phone) {
		errors = append(errors, FieldError{
			Field:   "phone",
			Message: "phone must be in E.164 format (e.g., +14155552671)",
			Value:   *fields.Phone,
		})
	}

	if fields.Category == "" {
		errors = append(errors, FieldError{
			Field:   "category",
			Message: "category is required",
			Value:   record[columnCategory],
		})
	} else if !CaseCategory(fields.Category).IsValid() {
		errors = append(errors, FieldError{
			Field:   "category",
			Message: "category must be one of TAX, LICENSE, PERMIT",
			Value:   fields.Category,
		})
	}

	if !CasePriority(fields.Priority).IsValid() {
		errors = append(errors, FieldError{
			Field:   "priority",
			Message: "priority must be one of LOW, MEDIUM, HIGH",
			Value:   fields.Priority,
		})
	}

	// Independent bounds pass: runs even when the format rule above already
	// rejected the value, so both errors can surface together.
	if fields.DOB != "" {
		if dob := v.dates.ValidateDateOfBirth(fields.DOB); !dob.IsValid {
			errors = append(errors, FieldError{
				Field:   "dob",
				Message: dob.Error,
				Value:   fields.DOB,
			})
		}
	}

	return RowValidation{
		IsValid: len(errors) == 0,
		Data:    fields,
		Errors:  errors,
	}
}

func normalizePriority(raw string) string {
	priority := strings.ToUpper(strings.TrimSpace(raw))
	if priority == "" {
		return string(PriorityLow)
	}
	return priority
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
