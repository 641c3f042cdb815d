package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateDateOfBirth(t *testing.T) {
	dv := NewDateValidator()

	t.Run("valid date", func(t *testing.T) {
		result := dv.ValidateDateOfBirth("1990-01-01")
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Error)
	})

	t.Run("date before 1900", func(t *testing.T) {
		result := dv.ValidateDateOfBirth("1899-12-31")
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "1900")
	})

	t.Run("date in the future", func(t *testing.T) {
		nextYear := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
		result := dv.ValidateDateOfBirth(nextYear)
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "future")
	})

	t.Run("unparseable input", func(t *testing.T) {
		result := dv.ValidateDateOfBirth("not-a-date")
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "Invalid")
	})

	t.Run("boundary date 1900-01-01 is accepted", func(t *testing.T) {
		result := dv.ValidateDateOfBirth("1900-01-01")
		assert.True(t, result.IsValid)
	})
}

func TestIsISODateString(t *testing.T) {
	dv := NewDateValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"1990-05-01", true},
		{"1990-05-01T12:30:00Z", true},
		{"1990-05-01T12:30:00", true},
		{"05/01/1990", false},
		{"1990-13-01", false},
		{"not-a-date", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, dv.IsISODateString(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	dv := NewDateValidator()

	t.Run("accepts US date format", func(t *testing.T) {
		parsed, ok := dv.Parse("05/01/1990")
		assert.True(t, ok)
		assert.Equal(t, 1990, parsed.Year())
		assert.Equal(t, time.May, parsed.Month())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, ok := dv.Parse("yesterday")
		assert.False(t, ok)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, ok := dv.Parse("")
		assert.False(t, ok)
	})
}
