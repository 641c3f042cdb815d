package seed

import (
	"server/config"
	"server/internal/logger"
	. "server/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			FirstName: "Alice",
			LastName:  "Nguyen",
			Email:     "alice.nguyen@example.com",
			Password:  "password",
			Role:      RoleAdmin,
		}, {
			FirstName: "Ben",
			LastName:  "Ortega",
			Email:     "ben.ortega@example.com",
			Password:  "password",
			Role:      RoleSupervisor,
		}, {
			FirstName: "Chidi",
			LastName:  "Okafor",
			Email:     "chidi.okafor@example.com",
			Password:  "password",
			Role:      RoleOperator,
		},
	}

	for _, user := range users {
		var existingUser User
		if err := db.First(&existingUser, "email = ?", user.Email).Error; err == nil {
			log.Info("User already exists", "email", user.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Er("failed to hash password", err, "email", user.Email)
			continue
		}
		user.Password = string(hash)

		log.Info("Seeding user", "email", user.Email, "role", user.Role)
		if err := db.Create(&user).Error; err != nil {
			log.Er("failed to create user", err, "email", user.Email)
		}
	}

	return nil
}
