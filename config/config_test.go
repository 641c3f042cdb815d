package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBulkImportAllowed(t *testing.T) {
	tests := []struct {
		name     string
		roles    string
		role     string
		expected bool
	}{
		{"role in list", "ADMIN,SUPERVISOR", "SUPERVISOR", true},
		{"role not in list", "ADMIN,SUPERVISOR", "OPERATOR", false},
		{"case insensitive match", "ADMIN", "admin", true},
		{"spaces around entries", "ADMIN, SUPERVISOR , OPERATOR", "OPERATOR", true},
		{"single role list", "OPERATOR", "OPERATOR", true},
		{"empty list denies everyone", "", "ADMIN", false},
		{"empty role denied", "ADMIN,SUPERVISOR", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Config{BulkImportRoles: tt.roles}
			assert.Equal(t, tt.expected, BulkImportAllowed(config, tt.role))
		})
	}
}
