package handlers

import (
	"time"

	"server/internal/app"
	usersController "server/internal/controllers/users"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	controller *usersController.UserController
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		controller: app.UserController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users")
	users.Post("/login", h.login)

	users.Get("/", h.middleware.RequireAuth(), h.getUser)
	users.Post("/logout", h.middleware.RequireAuth(), h.logout)
}

func (h *UserHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var loginRequest LoginRequest
	if err := c.BodyParser(&loginRequest); err != nil {
		log.Er("failed to parse login request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse login request"})
	}

	user, token, err := h.controller.Login(c.Context(), &loginRequest)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "invalid credentials"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "session",
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return c.JSON(fiber.Map{"message": "success", "user": user, "token": token})
}

func (h *UserHandler) getUser(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(User)
	if !ok || user.ID == "" {
		h.log.Function("getUser").ErMsg("No user found in locals")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get user"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) logout(c *fiber.Ctx) error {
	log := h.log.Function("logout")

	token := c.Cookies("session")
	if err := h.controller.Logout(c.Context(), token); err != nil {
		log.Er("failed to logout", err)
	}

	c.ClearCookie("session")
	return c.JSON(fiber.Map{"message": "success"})
}
