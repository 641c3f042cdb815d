package handlers

import (
	"math"

	"server/internal/app"
	casesController "server/internal/controllers/cases"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CaseHandler struct {
	Handler
	controller *casesController.CaseController
}

func NewCaseHandler(app app.App, router fiber.Router) *CaseHandler {
	log := logger.New("handlers").File("case_handler")
	return &CaseHandler{
		controller: app.CaseController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CaseHandler) Register() {
	cases := h.router.Group("/cases", h.middleware.RequireAuth())
	cases.Post("/", h.createCase)
	cases.Get("/", h.listCases)
	cases.Get("/stats", h.getStats)
	cases.Get("/:id", h.getCase)
	cases.Patch("/:id", h.updateCase)
	cases.Delete("/:id", h.middleware.RequireRole(RoleAdmin, RoleSupervisor), h.deleteCase)
}

func (h *CaseHandler) createCase(c *fiber.Ctx) error {
	log := h.log.Function("createCase")

	var request CreateCaseRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse create case request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse create case request"})
	}

	user := c.Locals("user").(User)

	caseRecord, err := h.controller.CreateCase(c.Context(), &request, user.ID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to create case", "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "case": caseRecord})
}

func (h *CaseHandler) listCases(c *fiber.Ctx) error {
	log := h.log.Function("listCases")

	var query CaseQuery
	if err := c.QueryParser(&query); err != nil {
		log.Er("failed to parse case query", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse query"})
	}

	user := c.Locals("user").(User)

	// Operators only see their own cases.
	operatorUserID := ""
	if user.Role == RoleOperator {
		operatorUserID = user.ID
	}

	cases, total, err := h.controller.ListCases(c.Context(), &query, operatorUserID)
	if err != nil {
		log.Er("failed to list cases", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to list cases"})
	}

	return c.JSON(fiber.Map{
		"message": "success",
		"data":    cases,
		"pagination": fiber.Map{
			"page":       query.Page,
			"limit":      query.Limit,
			"total":      total,
			"totalPages": int(math.Ceil(float64(total) / float64(query.Limit))),
		},
	})
}

func (h *CaseHandler) getStats(c *fiber.Ctx) error {
	log := h.log.Function("getStats")

	user := c.Locals("user").(User)

	scopedUserID := ""
	if user.Role == RoleOperator {
		scopedUserID = user.ID
	}

	stats, err := h.controller.GetStats(c.Context(), scopedUserID)
	if err != nil {
		log.Er("failed to get case stats", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to get case stats"})
	}

	return c.JSON(fiber.Map{"message": "success", "stats": stats})
}

func (h *CaseHandler) getCase(c *fiber.Ctx) error {
	log := h.log.Function("getCase")

	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "case ID is required"})
	}

	caseRecord, err := h.controller.GetCase(c.Context(), id)
	if err != nil {
		log.Er("failed to get case", err)
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "case not found"})
	}

	return c.JSON(fiber.Map{"message": "success", "case": caseRecord})
}

func (h *CaseHandler) updateCase(c *fiber.Ctx) error {
	log := h.log.Function("updateCase")

	id := c.Params("id")

	var request UpdateCaseRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse update case request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse update case request"})
	}

	user := c.Locals("user").(User)

	caseRecord, err := h.controller.UpdateCase(c.Context(), id, &request, user.ID)
	if err != nil {
		log.Er("failed to update case", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to update case", "error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "success", "case": caseRecord})
}

func (h *CaseHandler) deleteCase(c *fiber.Ctx) error {
	log := h.log.Function("deleteCase")

	id := c.Params("id")

	if err := h.controller.DeleteCase(c.Context(), id); err != nil {
		log.Er("failed to delete case", err)
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "case not found"})
	}

	return c.JSON(fiber.Map{"message": "case deleted successfully"})
}
