package usersController

import (
	"context"
	"fmt"
	"time"

	"server/config"
	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserController struct {
	userRepo repositories.UserRepository
	db       database.DB
	config   config.Config
	log      logger.Logger
}

func New(
	userRepo repositories.UserRepository,
	db database.DB,
	config config.Config,
) *UserController {
	return &UserController{
		userRepo: userRepo,
		db:       db,
		config:   config,
		log:      logger.New("userController"),
	}
}

// Login verifies the credentials and issues an opaque session token stored
// in the session cache with the configured TTL.
func (c *UserController) Login(ctx context.Context, req *LoginRequest) (*User, string, error) {
	log := c.log.Function("Login")

	user, err := c.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Warn("login attempt for unknown email", "email", req.Email)
		return nil, "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("login attempt with wrong password", "email", req.Email)
		return nil, "", fmt.Errorf("invalid credentials")
	}

	token := uuid.NewString()
	if err := database.NewCacheBuilder(c.db.Cache.Session, token).
		WithStruct(user.ID).
		WithTTL(c.sessionTTL()).
		WithContext(ctx).
		Set(); err != nil {
		return nil, "", log.Err("failed to store session", err, "userID", user.ID)
	}

	return user, token, nil
}

func (c *UserController) Logout(ctx context.Context, token string) error {
	log := c.log.Function("Logout")

	if token == "" {
		return nil
	}

	if err := database.NewCacheBuilder(c.db.Cache.Session, token).
		WithContext(ctx).
		Delete(); err != nil {
		return log.Err("failed to delete session", err)
	}

	return nil
}

func (c *UserController) sessionTTL() time.Duration {
	minutes := c.config.SessionTTLMinutes
	if minutes < 1 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}
