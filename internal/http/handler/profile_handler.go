package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lnky-dev/lnky/internal/app/model"
	"github.com/lnky-dev/lnky/internal/app/repository"
	"github.com/lnky-dev/lnky/internal/app/service"
	infraPrometheus "github.com/lnky-dev/lnky/internal/infra/prometheus"
	"go.uber.org/zap"
)

// ProfileDeps groups dependencies required by the public profile handlers.
type ProfileDeps struct {
	Logger        *zap.Logger
	UserService   service.UserService
	LinkService   service.LinkService
	ViewPublisher *service.ViewPublisher
}

// ProfileHandler serves the public, read-only profile surface. It never
// mutates the link collection.
type ProfileHandler struct {
	logger        *zap.Logger
	userService   service.UserService
	linkService   service.LinkService
	viewPublisher *service.ViewPublisher
}

// NewProfileHandler creates a profile handler with the provided dependencies.
func NewProfileHandler(deps ProfileDeps) *ProfileHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{
		logger:        logger,
		userService:   deps.UserService,
		linkService:   deps.LinkService,
		viewPublisher: deps.ViewPublisher,
	}
}

// Register wires the public routes onto the provided router.
func (h *ProfileHandler) Register(router fiber.Router, views fiber.Handler) {
	router.Get("/health", h.Health)
	if views != nil {
		router.Post("/api/views/:username", views, h.TrackView)
	} else {
		router.Post("/api/views/:username", h.TrackView)
	}
	// Keep last: the vanity path matches everything else.
	router.Get("/:username", h.Profile)
}

// Health is a simple endpoint so we know the service is running.
func (h *ProfileHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "lnky",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ProfileResponse is the public view of an account: display settings plus
// active links sorted for rendering.
type ProfileResponse struct {
	Username      string         `json:"username"`
	DisplayName   *string        `json:"display_name"`
	Bio           *string        `json:"bio"`
	ImageURL      *string        `json:"image_url"`
	BackgroundURL *string        `json:"background_url"`
	CursorURL     *string        `json:"cursor_url"`
	BgColor       *string        `json:"bg_color"`
	TextColor     *string        `json:"text_color"`
	AccentColor   *string        `json:"accent_color"`
	Links         []LinkResponse `json:"links"`
}

// Profile handles GET /:username, the vanity path visitors hit.
func (h *ProfileHandler) Profile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := h.userService.GetByUsername(userContext(c), username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("failed to load profile", zap.Error(err), zap.String("username", username))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	links, err := h.linkService.ListActiveLinks(userContext(c), user.ID)
	if err != nil {
		h.logger.Error("failed to load profile links", zap.Error(err), zap.String("username", username))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	response := ProfileResponse{
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		Bio:           user.Bio,
		ImageURL:      user.ImageURL,
		BackgroundURL: user.BackgroundURL,
		CursorURL:     user.CursorURL,
		BgColor:       user.BgColor,
		TextColor:     user.TextColor,
		AccentColor:   user.AccentColor,
		Links:         make([]LinkResponse, len(links)),
	}
	for i := range links {
		response.Links[i] = newLinkResponse(&links[i])
	}
	return c.JSON(response)
}

// TrackView handles POST /api/views/:username. Publishing is best-effort:
// a failed event is logged and dropped, never surfaced as a profile error.
func (h *ProfileHandler) TrackView(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := h.userService.GetByUsername(userContext(c), username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("failed to load user for view", zap.Error(err), zap.String("username", username))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	if h.viewPublisher != nil {
		go h.publishView(user, c.IP(), c.Get("User-Agent"))
	}

	infraPrometheus.ProfileViews.Inc()
	return c.JSON(fiber.Map{"success": true})
}

func (h *ProfileHandler) publishView(user *model.User, ip, userAgent string) {
	if err := h.viewPublisher.Publish(user.ID, user.Username, ip, userAgent); err != nil {
		h.logger.Error("failed to publish view event",
			zap.Error(err),
			zap.String("username", user.Username))
	}
}
