package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lnky-dev/lnky/internal/app/model"
	"github.com/lnky-dev/lnky/internal/app/repository"
	"github.com/lnky-dev/lnky/internal/app/service"
	"github.com/lnky-dev/lnky/internal/http/middleware"
	infraPrometheus "github.com/lnky-dev/lnky/internal/infra/prometheus"
	"go.uber.org/zap"
)

// LinkDeps groups dependencies required by link handlers.
type LinkDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
}

// LinkHandler implements the authenticated link management endpoints.
type LinkHandler struct {
	logger      *zap.Logger
	linkService service.LinkService
}

// NewLinkHandler creates a link handler with the provided dependencies.
func NewLinkHandler(deps LinkDeps) *LinkHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkHandler{
		logger:      logger,
		linkService: deps.LinkService,
	}
}

// Register wires link routes onto the provided (already authenticated) router.
func (h *LinkHandler) Register(router fiber.Router) {
	links := router.Group("/links")
	{
		links.Post("/", h.CreateLink)
		links.Get("/", h.ListLinks)
		links.Post("/reorder", h.ReorderLinks)
		links.Patch("/:id", h.UpdateLink)
		links.Post("/:id/toggle", h.ToggleLink)
		links.Delete("/:id", h.DeleteLink)
	}
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Kind     string `json:"kind,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// LinkResponse represents one link in API responses.
type LinkResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	Platform  *string   `json:"platform"`
	ImageURL  *string   `json:"image_url"`
	Order     int       `json:"order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func newLinkResponse(link *model.Link) LinkResponse {
	return LinkResponse{
		ID:        link.ID,
		Title:     link.Title,
		URL:       link.URL,
		Kind:      link.Kind,
		Platform:  link.Platform,
		ImageURL:  link.ImageURL,
		Order:     link.Order,
		Active:    link.Active,
		CreatedAt: link.CreatedAt,
	}
}

// CreateLink handles POST /api/links
func (h *LinkHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Title == "" || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and URL are required",
		})
	}

	link, err := h.linkService.CreateLink(userContext(c), middleware.UserID(c), service.CreateLinkInput{
		Title:    req.Title,
		URL:      req.URL,
		Kind:     req.Kind,
		Platform: req.Platform,
	})
	if err != nil {
		return h.fail(c, err, "failed to create link")
	}

	infraPrometheus.LinkMutations.WithLabelValues("create").Inc()
	return c.Status(fiber.StatusCreated).JSON(newLinkResponse(link))
}

// ListLinks handles GET /api/links
func (h *LinkHandler) ListLinks(c *fiber.Ctx) error {
	links, err := h.linkService.ListLinks(userContext(c), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err, "failed to list links")
	}

	response := make([]LinkResponse, len(links))
	for i := range links {
		response[i] = newLinkResponse(&links[i])
	}
	return c.JSON(response)
}

// OptionalString distinguishes an omitted JSON field from an explicit null:
// for image_url, null means "clear the image" while omission leaves it alone.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// UpdateLinkRequest represents the request body for patching a link.
// Absent fields are untouched.
type UpdateLinkRequest struct {
	Title    *string        `json:"title,omitempty"`
	URL      *string        `json:"url,omitempty"`
	Order    *int           `json:"order,omitempty"`
	Active   *bool          `json:"active,omitempty"`
	ImageURL OptionalString `json:"image_url"`
}

// UpdateLink handles PATCH /api/links/:id
func (h *LinkHandler) UpdateLink(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "link id is required",
		})
	}

	var req UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	input := service.UpdateLinkInput{
		Title:  req.Title,
		URL:    req.URL,
		Order:  req.Order,
		Active: req.Active,
	}
	if req.ImageURL.Set {
		if req.ImageURL.Value == nil {
			input.ClearImage = true
		} else {
			input.ImageURL = req.ImageURL.Value
		}
	}

	link, err := h.linkService.UpdateLink(userContext(c), middleware.UserID(c), id, input)
	if err != nil {
		return h.fail(c, err, "failed to update link")
	}

	infraPrometheus.LinkMutations.WithLabelValues("update").Inc()
	return c.JSON(newLinkResponse(link))
}

// ReorderLinksRequest represents the request body for the bulk reorder.
type ReorderLinksRequest struct {
	LinkIDs []string `json:"link_ids"`
}

// ReorderLinks handles POST /api/links/reorder
func (h *LinkHandler) ReorderLinks(c *fiber.Ctx) error {
	var req ReorderLinksRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.LinkIDs == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "link_ids must be an array",
		})
	}

	if err := h.linkService.ReorderLinks(userContext(c), middleware.UserID(c), req.LinkIDs); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			infraPrometheus.ReordersRejected.Inc()
		}
		return h.fail(c, err, "failed to reorder links")
	}

	infraPrometheus.LinkMutations.WithLabelValues("reorder").Inc()
	return c.JSON(fiber.Map{"success": true})
}

// ToggleLink handles POST /api/links/:id/toggle
func (h *LinkHandler) ToggleLink(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "link id is required",
		})
	}

	link, err := h.linkService.ToggleLink(userContext(c), middleware.UserID(c), id)
	if err != nil {
		return h.fail(c, err, "failed to toggle link")
	}

	infraPrometheus.LinkMutations.WithLabelValues("toggle").Inc()
	return c.JSON(newLinkResponse(link))
}

// DeleteLink handles DELETE /api/links/:id
func (h *LinkHandler) DeleteLink(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "link id is required",
		})
	}

	if err := h.linkService.DeleteLink(userContext(c), middleware.UserID(c), id); err != nil {
		return h.fail(c, err, "failed to delete link")
	}

	infraPrometheus.LinkMutations.WithLabelValues("delete").Inc()
	return c.JSON(fiber.Map{"success": true})
}

func (h *LinkHandler) fail(c *fiber.Ctx, err error, logMsg string) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	case errors.Is(err, repository.ErrLinkNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Link not found",
		})
	case errors.Is(err, service.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}
}

func userContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
