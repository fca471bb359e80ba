package integrity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"vehicle-sync/core/logger"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/collection", h.HandleCollectionCheck)
	group.Get("/references", h.HandleReferencesCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/database", h.HandleDatabaseCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all checks (Collection, References, Storage, Database). Never fixes anything.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := make(map[string]any)

	if r, err := h.service.CheckCollection(ctx); err != nil {
		report["collection"] = section(err)
	} else {
		report["collection"] = r
	}
	if r, err := h.service.CheckReferences(ctx); err != nil {
		report["references"] = section(err)
	} else {
		report["references"] = r
	}
	if r, err := h.service.CheckStorage(ctx, false); err != nil {
		report["storage"] = section(err)
	} else {
		report["storage"] = r
	}
	if r, err := h.service.CheckDatabase(false); err != nil {
		report["database"] = section(err)
	} else {
		report["database"] = r
	}

	return c.JSON(report)
}

// HandleCollectionCheck checks the vehicle collection.
// @Summary Check Vehicle Collection
// @Description Find items without key or hash and keys held by several items.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.CollectionReport "Collection Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/collection [get]
func (h *Handler) HandleCollectionCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckCollection(c.UserContext())
	if err != nil {
		return h.fail(c, "Collection check failed", err)
	}
	if !r.Healthy() {
		logger.WithRayID(h.service.logger, c).Warn("Vehicle collection needs attention",
			zap.Int("missing_key", len(r.MissingKey)),
			zap.Int("duplicates", len(r.Duplicates)))
	}
	return c.JSON(r)
}

// HandleReferencesCheck checks the reference collections.
// @Summary Check Reference Collections
// @Description Find reference items without slug and duplicate slugs.
// @Tags integrity
// @Produce json
// @Success 200 {array} checks.ReferenceReport "Reference Reports"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/references [get]
func (h *Handler) HandleReferencesCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckReferences(c.UserContext())
	if err != nil {
		return h.fail(c, "References check failed", err)
	}
	return c.JSON(r)
}

// HandleStorageCheck checks and optionally creates the bucket.
// @Summary Check Storage
// @Description Check that the media cache bucket exists. Optionally creates it.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} checks.StorageReport "Storage Report"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckStorage(c.UserContext(), c.Query("fix") == "true")
	if err != nil {
		return h.fail(c, "Storage check failed", err)
	}
	return c.JSON(r)
}

// HandleDatabaseCheck checks and optionally migrates the sync tables.
// @Summary Check Database
// @Description Check that the run log and offset tables exist. Optionally migrates them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Migrate missing tables"
// @Success 200 {object} checks.DatabaseReport "Database Report"
// @Failure 503 {object} map[string]string "Database not configured"
// @Router /integrity/database [get]
func (h *Handler) HandleDatabaseCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckDatabase(c.Query("fix") == "true")
	if err != nil {
		return h.fail(c, "Database check failed", err)
	}
	return c.JSON(r)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func section(err error) fiber.Map {
	status := "error"
	if errors.Is(err, ErrNotConfigured) {
		status = "disabled"
	}
	return fiber.Map{"status": status, "error": err.Error()}
}
