package handlers

import (
	"errors"
	"strings"

	"server/config"
	"server/internal/app"
	importsController "server/internal/controllers/imports"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ImportHandler struct {
	Handler
	controller *importsController.ImportController
	config     config.Config
}

func NewImportHandler(app app.App, router fiber.Router) *ImportHandler {
	log := logger.New("handlers").File("import_handler")
	return &ImportHandler{
		controller: app.ImportController,
		config:     app.Config,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ImportHandler) Register() {
	imports := h.router.Group("/imports", h.middleware.RequireAuth())
	imports.Post("/upload", h.uploadCSV)
	imports.Post("/submit", h.submitImport)
	imports.Get("/", h.listImports)
	imports.Get("/:id", h.getImport)
}

// uploadCSV parses and validates an uploaded file without persisting
// anything. The response splits the rows into valid normalized data and
// invalid rows with their error lists, for review before submission.
func (h *ImportHandler) uploadCSV(c *fiber.Ctx) error {
	log := h.log.Function("uploadCSV")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "no file uploaded"})
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	if contentType != "text/csv" && !strings.HasSuffix(fileHeader.Filename, ".csv") {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "only CSV files are allowed"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Er("failed to open uploaded file", err, "filename", fileHeader.Filename)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to read uploaded file"})
	}
	defer file.Close()

	records, err := h.controller.ParseCSV(file)
	if err != nil {
		if errors.Is(err, importsController.ErrEmptyFile) ||
			errors.Is(err, importsController.ErrInvalidCSV) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "failed to parse CSV file", "error": err.Error()})
		}
		log.Er("failed to parse CSV file", err, "filename", fileHeader.Filename)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse CSV file", "error": err.Error()})
	}

	preview := h.controller.ValidateAndTransform(records)

	return c.JSON(fiber.Map{
		"filename":    fileHeader.Filename,
		"totalRows":   len(records),
		"validRows":   len(preview.Valid),
		"invalidRows": len(preview.Invalid),
		"validData":   preview.Valid,
		"errors":      preview.Invalid,
	})
}

// submitImport persists previously validated (possibly user-edited) rows.
// Resubmitting the failed subset of an earlier run is just another call to
// this endpoint with a smaller input set.
func (h *ImportHandler) submitImport(c *fiber.Ctx) error {
	log := h.log.Function("submitImport")

	user := c.Locals("user").(User)

	if !config.BulkImportAllowed(h.config, string(user.Role)) {
		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"message": "bulk import is not enabled for your role"})
	}

	var request SubmitImportRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse import submission", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse import submission"})
	}

	if len(request.Cases) == 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "no cases to import"})
	}

	importRecord, err := h.controller.CreateImport(
		c.Context(), request.Filename, len(request.Cases), user.ID,
	)
	if err != nil {
		log.Er("failed to create import record", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to create import record"})
	}

	result, err := h.controller.ProcessBatch(
		c.Context(), request.Cases, user.ID, importRecord.ID, h.config.ImportChunkSize,
	)
	if err != nil {
		log.Er("failed to process import", err, "importID", importRecord.ID)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to process import", "importId": importRecord.ID})
	}

	return c.JSON(fiber.Map{
		"importId":       importRecord.ID,
		"successful":     result.Successful,
		"failed":         result.Failed,
		"totalProcessed": result.TotalProcessed,
	})
}

func (h *ImportHandler) listImports(c *fiber.Ctx) error {
	log := h.log.Function("listImports")

	user := c.Locals("user").(User)

	createdByID := ""
	if user.Role == RoleOperator {
		createdByID = user.ID
	}

	imports, err := h.controller.GetImports(c.Context(), createdByID)
	if err != nil {
		log.Er("failed to list imports", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to list imports"})
	}

	return c.JSON(fiber.Map{"message": "success", "imports": imports})
}

func (h *ImportHandler) getImport(c *fiber.Ctx) error {
	log := h.log.Function("getImport")

	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "import ID is required"})
	}

	importRecord, err := h.controller.GetImportByID(c.Context(), id)
	if err != nil {
		log.Er("failed to get import", err)
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "import not found"})
	}

	return c.JSON(fiber.Map{"message": "success", "import": importRecord})
}
