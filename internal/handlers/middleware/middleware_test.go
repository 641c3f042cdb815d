package middleware

import (
	"testing"

	"server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	tests := []struct {
		name     string
		role     models.UserRole
		allowed  []models.UserRole
		expected bool
	}{
		{
			name:     "admin in admin-only list",
			role:     models.RoleAdmin,
			allowed:  []models.UserRole{models.RoleAdmin},
			expected: true,
		},
		{
			name:     "operator not in elevated list",
			role:     models.RoleOperator,
			allowed:  []models.UserRole{models.RoleAdmin, models.RoleSupervisor},
			expected: false,
		},
		{
			name:     "supervisor in elevated list",
			role:     models.RoleSupervisor,
			allowed:  []models.UserRole{models.RoleAdmin, models.RoleSupervisor},
			expected: true,
		},
		{
			name:     "empty allowed list denies all",
			role:     models.RoleAdmin,
			allowed:  nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AllowedRole(tt.role, tt.allowed))
		})
	}
}
