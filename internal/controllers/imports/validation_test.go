package importsController

import (
	"testing"

	. "server/internal/models"

	"github.com/stretchr/testify/assert"
)

func validRow() RawRow {
	return RawRow{
		"case_id":        "C-1001",
		"applicant_name": "jane  doe",
		"dob":            "1990-05-01",
		"email":          "JANE@X.COM",
		"phone":          "9876543210",
		"category":       "tax",
		"priority":       "",
	}
}

func TestValidateRow_EndToEnd(t *testing.T) {
	v := NewRowValidator()

	result := v.ValidateRow(validRow(), 2)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "C-1001", result.Data.CaseID)
	assert.Equal(t, "Jane Doe", result.Data.ApplicantName)
	assert.Equal(t, "1990-05-01", result.Data.DOB)
	assert.Equal(t, "jane@x.com", *result.Data.Email)
	assert.Equal(t, "+19876543210", *result.Data.Phone)
	assert.Equal(t, "TAX", result.Data.Category)
	assert.Equal(t, "LOW", result.Data.Priority)
}

func TestValidateRow_IsValidMatchesErrorCount(t *testing.T) {
	v := NewRowValidator()

	rows := []RawRow{
		validRow(),
		{},
		{"case_id": "C-1", "dob": "bogus"},
		{"case_id": "C-2", "applicant_name": "x", "dob": "1990-01-01", "category": "TAX"},
	}

	for _, row := range rows {
		result := v.ValidateRow(row, 2)
		assert.Equal(t, len(result.Errors) == 0, result.IsValid)
	}
}

func TestValidateRow_RequiredFields(t *testing.T) {
	v := NewRowValidator()

	result := v.ValidateRow(RawRow{}, 2)

	assert.False(t, result.IsValid)

	fields := map[string]bool{}
	for _, fieldError := range result.Errors {
		fields[fieldError.Field] = true
	}
	assert.True(t, fields["caseId"])
	assert.True(t, fields["applicantName"])
	assert.True(t, fields["dob"])
	assert.True(t, fields["category"])
}

func TestValidateRow_CollectsAllFailures(t *testing.T) {
	v := NewRowValidator()

	row := validRow()
	row["email"] = "not-an-email"
	row["phone"] = "12345"
	row["category"] = "VISA"

	result := v.ValidateRow(row, 2)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 3)
}

// A dob that fails the format rule also runs through the independent bounds
// pass, so the same value can report two errors.
func TestValidateRow_DOBReportsFormatAndBoundsErrors(t *testing.T) {
	v := NewRowValidator()

	row := validRow()
	row["dob"] = "12/31/1899"

	result := v.ValidateRow(row, 2)

	assert.False(t, result.IsValid)

	var dobErrors []FieldError
	for _, fieldError := range result.Errors {
		if fieldError.Field == "dob" {
			dobErrors = append(dobErrors, fieldError)
		}
	}
	assert.Len(t, dobErrors, 2)
	assert.Contains(t, dobErrors[0].Message, "ISO 8601")
	assert.Contains(t, dobErrors[1].Message, "1900")
}

func TestValidateRow_PriorityDefaultsAndValidates(t *testing.T) {
	v := NewRowValidator()

	t.Run("absent priority defaults to LOW", func(t *testing.T) {
		row := validRow()
		delete(row, "priority")

		result := v.ValidateRow(row, 2)
		assert.True(t, result.IsValid)
		assert.Equal(t, "LOW", result.Data.Priority)
	})

	t.Run("priority is uppercased", func(t *testing.T) {
		row := validRow()
		row["priority"] = "high"

		result := v.ValidateRow(row, 2)
		assert.True(t, result.IsValid)
		assert.Equal(t, "HIGH", result.Data.Priority)
	})

	t.Run("unknown priority is rejected", func(t *testing.T) {
		row := validRow()
		row["priority"] = "URGENT"

		result := v.ValidateRow(row, 2)
		assert.False(t, result.IsValid)
		assert.Equal(t, "priority", result.Errors[0].Field)
	})
}

func TestValidateRow_PhoneHeuristicFeedsValidation(t *testing.T) {
	v := NewRowValidator()

	t.Run("heuristic-normalized phone passes", func(t *testing.T) {
		row := validRow()
		row["phone"] = "(987) 654-3210"

		result := v.ValidateRow(row, 2)
		assert.True(t, result.IsValid)
		assert.Equal(t, "+19876543210", *result.Data.Phone)
	})

	t.Run("digits-only phone of unrecognized length fails", func(t *testing.T) {
		row := validRow()
		row["phone"] = "4412345678901"

		result := v.ValidateRow(row, 2)
		assert.False(t, result.IsValid)
		assert.Equal(t, "phone", result.Errors[0].Field)
	})

	t.Run("absent phone is accepted", func(t *testing.T) {
		row := validRow()
		delete(row, "phone")

		result := v.ValidateRow(row, 2)
		assert.True(t, result.IsValid)
		assert.Nil(t, result.Data.Phone)
	})
}
