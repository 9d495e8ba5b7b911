package files

import (
	"errors"

	"offrows/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for file storage.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the files routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/files")
	group.Get("/status", h.HandleStatus)
	group.Post("/upload", h.HandleUpload)
	group.Delete("/:key", h.HandleDelete)
	group.Get("/:key", h.HandleDownload)
}

// HandleStatus reports storage configuration and reachability.
// @Summary Storage Status
// @Tags files
// @Produce json
// @Success 200 {object} Status "Storage status"
// @Router /files/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.GetStatus(c.Context()))
}

// HandleUpload stores a base64-encoded file.
// @Summary Upload File
// @Tags files
// @Accept json
// @Produce json
// @Param upload body UploadRequest true "Base64-encoded file"
// @Success 200 {object} UploadResult "Stored object"
// @Failure 400 {object} map[string]string "Missing filename or data"
// @Failure 500 {object} map[string]string "Storage not configured or upload failed"
// @Router /files/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Filename == "" || req.Data == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "filename and data are required",
		})
	}

	result, err := h.service.Upload(c.Context(), &req)
	if err != nil {
		l.Error("File upload failed", zap.String("filename", req.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}

// HandleDownload streams one stored file.
// @Summary Download File
// @Tags files
// @Produce octet-stream
// @Param key path string true "Object key"
// @Success 200 {file} binary "File content"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /files/{key} [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	key := c.Params("key")

	obj, contentType, err := h.service.Download(c.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "file not found",
			})
		}
		l.Error("File download failed", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.SendStream(obj)
}

// HandleDelete removes one stored file.
// @Summary Delete File
// @Tags files
// @Produce json
// @Param key path string true "Object key"
// @Success 200 {object} map[string]string "Deleted key"
// @Failure 500 {object} map[string]string "Storage not configured or delete failed"
// @Router /files/{key} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	key := c.Params("key")

	if err := h.service.Delete(c.Context(), key); err != nil {
		l.Error("File delete failed", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"deleted": key})
}
