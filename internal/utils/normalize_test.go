package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeApplicantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses internal whitespace and title-cases",
			input:    "John  DOE",
			expected: "John Doe",
		},
		{
			name:     "trims outer whitespace",
			input:    "  Alice Smith  ",
			expected: "Alice Smith",
		},
		{
			name:     "lowercases token remainders",
			input:    "MARIA GARCIA",
			expected: "Maria Garcia",
		},
		{
			name:     "hyphenated token is title-cased as one word",
			input:    "maria-santos lopez",
			expected: "Maria-santos Lopez",
		},
		{
			name:     "single token",
			input:    "jane",
			expected: "Jane",
		},
		{
			name:     "empty input passes through",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeApplicantName(tt.input))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Run("trims and lowercases", func(t *testing.T) {
		result := NormalizeEmail("  TEST@EXAMPLE.COM  ")
		assert.NotNil(t, result)
		assert.Equal(t, "test@example.com", *result)
	})

	t.Run("empty input maps to absent", func(t *testing.T) {
		assert.Nil(t, NormalizeEmail(""))
	})

	t.Run("whitespace-only input maps to absent", func(t *testing.T) {
		assert.Nil(t, NormalizeEmail("   "))
	})
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "10 digits assumed North American",
			input:    "9876543210",
			expected: "+19876543210",
		},
		{
			name:     "11 digits starting with 1",
			input:    "19876543210",
			expected: "+19876543210",
		},
		{
			name:     "12 digits starting with 91 assumed Indian",
			input:    "919876543210",
			expected: "+919876543210",
		},
		{
			name:     "existing plus prefix is preserved",
			input:    "+14155552671",
			expected: "+14155552671",
		},
		{
			name:     "formatting characters are stripped",
			input:    "(987) 654-3210",
			expected: "+19876543210",
		},
		{
			name:     "unrecognized length stays digits-only",
			input:    "12345",
			expected: "12345",
		},
		{
			name:     "13 digits stay digits-only",
			input:    "4412345678901",
			expected: "4412345678901",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePhone(tt.input)
			assert.NotNil(t, result)
			assert.Equal(t, tt.expected, *result)
		})
	}

	t.Run("empty input maps to absent", func(t *testing.T) {
		assert.Nil(t, NormalizePhone(""))
	})
}
