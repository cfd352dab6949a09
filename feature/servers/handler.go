package servers

import (
	"errors"

	"emby-tagger/core/logger"
	"emby-tagger/core/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for remote servers.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the server routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/servers")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Post("/test", h.HandleTest)
	group.Get("/active", h.HandleActive)
	group.Get("/:id", h.HandleGet)
	group.Patch("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
}

// TestRequest is the body of POST /servers/test.
type TestRequest struct {
	URL    string `json:"url" validate:"required,http_url"`
	APIKey string `json:"apiKey" validate:"required"`
}

// HandleList lists servers.
// @Summary List Servers
// @Description Returns every configured Emby server ordered by name.
// @Tags servers
// @Produce json
// @Success 200 {array} models.RemoteServer
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /servers [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	servers, err := h.service.List(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(servers)
}

// HandleGet returns one server.
// @Summary Get Server
// @Tags servers
// @Produce json
// @Param id path int true "Server ID"
// @Success 200 {object} models.RemoteServer
// @Failure 404 {object} map[string]string "Not Found"
// @Router /servers/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid server id"})
	}
	server, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(server)
}

// HandleCreate adds a server after testing its connection.
// @Summary Add Server
// @Description Tests the connection, stores the server and its remote id. An active server deactivates the others.
// @Tags servers
// @Accept json
// @Produce json
// @Param server body CreateInput true "Server"
// @Success 201 {object} models.RemoteServer
// @Failure 400 {object} map[string]interface{} "Validation Error"
// @Failure 502 {object} map[string]string "Connection Failed"
// @Router /servers [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	server, err := h.service.Create(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(server)
}

// HandleUpdate changes a server.
// @Summary Update Server
// @Description Updates the given fields. A new URL or API key is tested first.
// @Tags servers
// @Accept json
// @Produce json
// @Param id path int true "Server ID"
// @Param server body UpdateInput true "Fields to change"
// @Success 200 {object} models.RemoteServer
// @Failure 400 {object} map[string]interface{} "Validation Error"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 502 {object} map[string]string "Connection Failed"
// @Router /servers/{id} [patch]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid server id"})
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	server, err := h.service.Update(c.Context(), uint(id), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(server)
}

// HandleDelete removes a server and its mirror rows.
// @Summary Delete Server
// @Tags servers
// @Param id path int true "Server ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /servers/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid server id"})
	}
	if err := h.service.Delete(c.Context(), uint(id)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleTest checks credentials without storing them.
// @Summary Test Connection
// @Tags servers
// @Accept json
// @Produce json
// @Param request body TestRequest true "URL and API key"
// @Success 200 {object} emby.SystemInfo
// @Failure 502 {object} map[string]string "Connection Failed"
// @Router /servers/test [post]
func (h *Handler) HandleTest(c *fiber.Ctx) error {
	var req TestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}
	info, err := h.service.Test(c.Context(), req.URL, req.APIKey)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(info)
}

// HandleActive returns the active server.
// @Summary Active Server
// @Tags servers
// @Produce json
// @Success 200 {object} models.RemoteServer
// @Failure 404 {object} map[string]string "No Active Server"
// @Router /servers/active [get]
func (h *Handler) HandleActive(c *fiber.Ctx) error {
	server, err := h.service.Active(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(server)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validation.ErrValidation.Error(), "fields": verr.Fields})
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoActiveServer):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrConnectionFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithRayID(h.service.logger, c).Error("Server request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
