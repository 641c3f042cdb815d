package models

type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleSupervisor UserRole = "SUPERVISOR"
	RoleOperator   UserRole = "OPERATOR"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleOperator:
		return true
	}
	return false
}

type User struct {
	BaseUUIDModel
	FirstName string   `gorm:"type:varchar(100);not null"       json:"firstName"`
	LastName  string   `gorm:"type:varchar(100);not null"       json:"lastName"`
	Email     string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"type:varchar(255);not null"       json:"-"`
	Role      UserRole `gorm:"type:varchar(20);not null;default:OPERATOR" json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
