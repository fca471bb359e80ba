package media

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"vehicle-sync/core/logger"
	"vehicle-sync/core/syscara"
)

// Handler handles HTTP requests for media files.
type Handler struct {
	service *Service
	path    string
}

// NewHandler creates a handler serving under path (e.g. "/media").
func NewHandler(service *Service, path string) *Handler {
	if path == "" {
		path = "/media"
	}
	return &Handler{service: service, path: path}
}

// RegisterRoutes registers the media routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get(h.path, h.HandleMedia)
	app.Get(h.path+"/:id/info", h.HandleInfo)
}

// HandleMedia streams a media file.
// @Summary Media Proxy
// @Description Stream a Syscara media file. Public, the CMS embeds these URLs.
// @Tags media
// @Produce octet-stream
// @Param id query string true "Syscara media id"
// @Success 200 {file} binary "Media file"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 502 {object} map[string]string "Upstream Error"
// @Router /media [get]
func (h *Handler) HandleMedia(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing ?id="})
	}

	obj, err := h.service.Open(c.UserContext(), id)
	if err != nil {
		return h.fail(c, id, err)
	}

	cache := "MISS"
	if obj.Cached {
		cache = "HIT"
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", h.service.cfg.MaxAgeSeconds))
	c.Set("X-Cache", cache)

	size := -1
	if obj.Size >= 0 {
		size = int(obj.Size)
	}
	return c.SendStream(obj.Body, size)
}

// HandleInfo resolves a media id.
// @Summary Media Info
// @Description Resolve a media id to its file name and public upstream URL.
// @Tags media
// @Produce json
// @Param id path string true "Syscara media id"
// @Success 200 {object} map[string]any "Media info"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /media/{id}/info [get]
func (h *Handler) HandleInfo(c *fiber.Ctx) error {
	id := c.Params("id")
	info, err := h.service.Info(c.UserContext(), id)
	if err != nil {
		return h.fail(c, id, err)
	}
	return c.JSON(fiber.Map{
		"ok":        true,
		"id":        info.ID,
		"fileName":  info.FileName,
		"publicUrl": info.PublicURL,
	})
}

func (h *Handler) fail(c *fiber.Ctx, id string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, syscara.ErrMediaNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error("Media request failed", zap.String("media_id", id), zap.Error(err))
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}
