package catalog

import (
	"errors"

	"emby-tagger/core/logger"
	"emby-tagger/core/reconcile"
	"emby-tagger/core/validation"
	"emby-tagger/feature/servers"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service   *Service
	validator *validation.Validator
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: validation.New()}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Post("/sync", h.HandleSync)
	group.Get("/sync/last", h.HandleLastReport)
	group.Get("/view", h.HandleView)
	group.Post("/operations", h.HandleApply)
	group.Get("/unmapped", h.HandleUnmapped)
	group.Post("/genre-tags", h.HandleGenreTag)
}

// ApplyRequest is the body of POST /catalog/operations.
type ApplyRequest struct {
	Operations []reconcile.Operation `json:"operations" validate:"required,min=1,dive"`
}

// GenreTagRequest is the body of POST /catalog/genre-tags.
type GenreTagRequest struct {
	Genre string `json:"genre" validate:"required,max=191"`
}

// HandleSync runs a reconciliation pass.
// @Summary Sync Catalog
// @Description Mirrors the active server's catalog and proposes mappings for every remote item.
// @Tags catalog
// @Produce json
// @Success 200 {object} SyncReport
// @Failure 409 {object} map[string]string "No Active Server"
// @Failure 502 {object} map[string]string "Remote Unavailable"
// @Router /catalog/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	report, err := h.service.Sync(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleView returns match results from the mirror.
// @Summary Catalog View
// @Description Matches the stored mirror against the local catalog without contacting the server.
// @Tags catalog
// @Produce json
// @Success 200 {object} SyncReport
// @Failure 409 {object} map[string]string "No Active Server"
// @Router /catalog/view [get]
func (h *Handler) HandleView(c *fiber.Ctx) error {
	report, err := h.service.View(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleLastReport returns the newest archived report.
// @Summary Last Sync Report
// @Tags catalog
// @Produce json
// @Success 200 {object} SyncReport
// @Failure 404 {object} map[string]string "No Report"
// @Router /catalog/sync/last [get]
func (h *Handler) HandleLastReport(c *fiber.Ctx) error {
	report, err := h.service.LastReport(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleApply applies mapping operations.
// @Summary Apply Operations
// @Description Applies map, unmap, create and refresh operations. Each one succeeds or fails on its own.
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body ApplyRequest true "Operations"
// @Success 200 {object} reconcile.BatchResult
// @Failure 400 {object} map[string]interface{} "Validation Error"
// @Router /catalog/operations [post]
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	result := h.service.Apply(c.Context(), req.Operations)
	logger.WithRayID(h.service.logger, c).Info("Batch applied",
		zap.Int("success", len(result.Success)),
		zap.Int("failed", len(result.Failed)),
	)
	return c.JSON(result)
}

// HandleUnmapped lists local items without a mirror row for the active server.
// @Summary Unmapped Local Items
// @Tags catalog
// @Produce json
// @Param search query string false "Title filter"
// @Success 200 {array} models.LocalItem
// @Failure 409 {object} map[string]string "No Active Server"
// @Router /catalog/unmapped [get]
func (h *Handler) HandleUnmapped(c *fiber.Ctx) error {
	items, err := h.service.UnmappedLocalItems(c.Context(), c.Query("search"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(items)
}

// HandleGenreTag tags mapped items of a genre.
// @Summary Tag By Genre
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body GenreTagRequest true "Genre"
// @Success 200 {object} GenreTagResult
// @Failure 400 {object} map[string]interface{} "Validation Error"
// @Failure 409 {object} map[string]string "No Active Server"
// @Router /catalog/genre-tags [post]
func (h *Handler) HandleGenreTag(c *fiber.Ctx) error {
	var req GenreTagRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	result, err := h.service.AddTagByGenre(c.Context(), req.Genre)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validation.ErrValidation.Error(), "fields": verr.Fields})
	case errors.Is(err, servers.ErrNoActiveServer):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrRemoteUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNoReport):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithRayID(h.service.logger, c).Error("Catalog request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
