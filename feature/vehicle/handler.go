package vehicle

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"vehicle-sync/core/logger"
	"vehicle-sync/core/syscara"
	vsync "vehicle-sync/feature/vehicle/sync"
)

// defaultRunsLimit is the page size of GET /sync/runs.
const defaultRunsLimit = 20

// Handler handles HTTP requests for vehicles.
type Handler struct {
	service   *Service
	publicURL string
}

// NewHandler creates a new HTTP handler. publicURL is the origin media URLs are built
// from; when empty the origin of each sync request is used.
func NewHandler(service *Service, publicURL string) *Handler {
	return &Handler{service: service, publicURL: strings.TrimRight(publicURL, "/")}
}

// RegisterRoutes registers the vehicle routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/sync", h.HandleSync)
	app.Get("/sync/runs", h.HandleRuns)

	ads := app.Group("/ads")
	ads.Get("/public", h.HandlePublicStats)
	ads.Get("/beds", h.HandleBeds)
	ads.Get("/mapping", h.HandleMapping)
	ads.Get("/:id", h.HandleInspect)
}

// HandleSync runs one sync batch.
// @Summary Run Delta Sync
// @Description Sync one batch of filtered Syscara listings into the Webflow collection and delete records no longer offered.
// @Tags sync
// @Produce json
// @Param limit query int false "Batch size (capped by sync.max_limit)"
// @Param dry query string false "Dry run when 1 or true"
// @Param offset query int false "Start offset overriding the stored one"
// @Success 200 {object} vsync.Report "Run report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync [get]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	opts := vsync.RunOptions{
		DryRun: isTrue(c.Query("dry")),
		Origin: h.origin(c),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		opts.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "offset must be a non-negative integer"})
		}
		opts.Offset = &n
	}

	report, err := h.service.Sync(c.UserContext(), opts)
	if err != nil {
		l.Error("Sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleRuns lists recorded runs.
// @Summary List Sync Runs
// @Description Latest recorded non-dry sync runs, newest first.
// @Tags sync
// @Produce json
// @Param limit query int false "Number of runs (default 20)"
// @Success 200 {array} vsync.SyncRun "Runs"
// @Failure 503 {object} map[string]string "Run log not configured"
// @Router /sync/runs [get]
func (h *Handler) HandleRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.Runs(c.UserContext(), c.QueryInt("limit", defaultRunsLimit))
	if errors.Is(err, ErrHistoryDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Listing sync runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// HandlePublicStats returns visibility statistics.
// @Summary Public Vehicle Statistics
// @Description Classify every listing as public or excluded (status BE, type Reisemobil or Caravan).
// @Tags ads
// @Produce json
// @Success 200 {object} PublicStats "Statistics"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /ads/public [get]
func (h *Handler) HandlePublicStats(c *fiber.Ctx) error {
	stats, err := h.service.PublicStats(c.UserContext())
	if err != nil {
		return h.fail(c, "Public statistics failed", err)
	}
	return c.JSON(stats)
}

// HandleBeds returns the bed type vocabulary.
// @Summary Bed Type Scan
// @Description Count bed type tokens across the catalog with the slug each resolves under.
// @Tags ads
// @Produce json
// @Success 200 {object} BedScan "Bed types"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /ads/beds [get]
func (h *Handler) HandleBeds(c *fiber.Ctx) error {
	scan, err := h.service.ScanBeds(c.UserContext())
	if err != nil {
		return h.fail(c, "Bed scan failed", err)
	}
	return c.JSON(scan)
}

// HandleMapping returns mapping diagnostics.
// @Summary Mapping Diagnostics
// @Description Map the filtered catalog without writing and report unknown names, missing ids and vehicles without images.
// @Tags ads
// @Produce json
// @Success 200 {object} MappingReport "Diagnostics"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /ads/mapping [get]
func (h *Handler) HandleMapping(c *fiber.Ctx) error {
	report, err := h.service.MappingReport(c.UserContext())
	if err != nil {
		return h.fail(c, "Mapping diagnostics failed", err)
	}
	return c.JSON(report)
}

// HandleInspect returns one listing raw and mapped.
// @Summary Inspect Listing
// @Description Fetch a single listing and show the record the sync would write.
// @Tags ads
// @Produce json
// @Param id path string true "Syscara listing id"
// @Success 200 {object} Inspection "Listing"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /ads/{id} [get]
func (h *Handler) HandleInspect(c *fiber.Ctx) error {
	inspection, err := h.service.Inspect(c.UserContext(), c.Params("id"))
	if errors.Is(err, syscara.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return h.fail(c, "Listing inspection failed", err)
	}
	return c.JSON(inspection)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// origin is the configured public URL or, failing that, the request origin as seen
// through a reverse proxy.
func (h *Handler) origin(c *fiber.Ctx) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	proto := c.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = c.Protocol()
	}
	host := c.Get("X-Forwarded-Host")
	if host == "" {
		host = c.Hostname()
	}
	// Proxies may append a comma separated chain.
	proto, _, _ = strings.Cut(proto, ",")
	host, _, _ = strings.Cut(host, ",")
	return strings.TrimSpace(proto) + "://" + strings.TrimSpace(host)
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
