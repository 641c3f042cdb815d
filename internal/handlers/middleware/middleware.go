package middleware

import (
	"strings"

	"server/config"
	"server/internal/database"
	"server/internal/logger"
	"server/internal/models"
	"server/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

type Middleware struct {
	db       database.DB
	config   config.Config
	userRepo repositories.UserRepository
	log      logger.Logger
}

func New(
	db database.DB,
	config config.Config,
	userRepo repositories.UserRepository,
) Middleware {
	return Middleware{
		db:       db,
		config:   config,
		userRepo: userRepo,
		log:      logger.New("middleware"),
	}
}

// RequireAuth resolves the session token to a user and stores it in
// c.Locals("user"). Requests without a valid session are rejected before any
// pipeline code runs.
func (m Middleware) RequireAuth() fiber.Handler {
	log := m.log.Function("RequireAuth")

	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "authentication required"})
		}

		var userID string
		found, err := database.NewCacheBuilder(m.db.Cache.Session, token).
			WithContext(c.Context()).
			Get(&userID)
		if err != nil {
			log.Er("failed to look up session", err)
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "authentication required"})
		}
		if !found {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "session expired"})
		}

		user, err := m.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			log.Er("failed to load session user", err, "userID", userID)
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "authentication required"})
		}

		c.Locals("user", *user)
		return c.Next()
	}
}

// RequireRole allows only the listed roles past. Must run after RequireAuth.
func (m Middleware) RequireRole(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "authentication required"})
		}

		if AllowedRole(user.Role, roles) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"message": "insufficient permissions"})
	}
}

// AllowedRole is the pure role check behind RequireRole.
func AllowedRole(role models.UserRole, allowed []models.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func sessionToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies("session")
}
