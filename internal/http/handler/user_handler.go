package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lnky-dev/lnky/internal/app/repository"
	"github.com/lnky-dev/lnky/internal/app/service"
	"github.com/lnky-dev/lnky/internal/http/middleware"
	"go.uber.org/zap"
)

// UserDeps groups dependencies required by user settings handlers.
type UserDeps struct {
	Logger      *zap.Logger
	UserService service.UserService
	LinkService service.LinkService
}

// UserHandler implements the authenticated profile settings endpoints.
type UserHandler struct {
	logger      *zap.Logger
	userService service.UserService
	linkService service.LinkService
}

// NewUserHandler creates a user handler with the provided dependencies.
func NewUserHandler(deps UserDeps) *UserHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		logger:      logger,
		userService: deps.UserService,
		linkService: deps.LinkService,
	}
}

// Register wires user settings routes onto the provided (already
// authenticated) router.
func (h *UserHandler) Register(router fiber.Router) {
	user := router.Group("/user")
	{
		user.Patch("/profile", h.UpdateProfile)
		user.Patch("/colors", h.UpdateColors)
		user.Delete("/background", h.ClearBackground)
		user.Delete("/cursor", h.ClearCursor)
		user.Get("/stats", h.Stats)
	}
}

// UpdateProfileRequest represents the request body for display settings.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

// UpdateProfile handles PATCH /api/user/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	err := h.userService.UpdateProfile(userContext(c), middleware.UserID(c), service.ProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		return h.fail(c, err, "failed to update profile")
	}
	return c.JSON(fiber.Map{"success": true})
}

// UpdateColorsRequest represents the request body for theme colors.
type UpdateColorsRequest struct {
	BgColor     string `json:"bg_color"`
	TextColor   string `json:"text_color"`
	AccentColor string `json:"accent_color"`
}

// UpdateColors handles PATCH /api/user/colors
func (h *UserHandler) UpdateColors(c *fiber.Ctx) error {
	var req UpdateColorsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	err := h.userService.UpdateColors(userContext(c), middleware.UserID(c), service.ColorsInput{
		BgColor:     req.BgColor,
		TextColor:   req.TextColor,
		AccentColor: req.AccentColor,
	})
	if err != nil {
		return h.fail(c, err, "failed to update colors")
	}
	return c.JSON(fiber.Map{"success": true})
}

// ClearBackground handles DELETE /api/user/background
func (h *UserHandler) ClearBackground(c *fiber.Ctx) error {
	if err := h.userService.ClearBackground(userContext(c), middleware.UserID(c)); err != nil {
		return h.fail(c, err, "failed to clear background")
	}
	return c.JSON(fiber.Map{"success": true})
}

// ClearCursor handles DELETE /api/user/cursor
func (h *UserHandler) ClearCursor(c *fiber.Ctx) error {
	if err := h.userService.ClearCursor(userContext(c), middleware.UserID(c)); err != nil {
		return h.fail(c, err, "failed to clear cursor")
	}
	return c.JSON(fiber.Map{"success": true})
}

// Stats handles GET /api/user/stats
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	ctx := userContext(c)
	userID := middleware.UserID(c)

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		return h.fail(c, err, "failed to load user")
	}

	links, err := h.linkService.ListLinks(ctx, userID)
	if err != nil {
		return h.fail(c, err, "failed to list links")
	}

	return c.JSON(fiber.Map{
		"profile_views": user.ProfileViews,
		"link_count":    len(links),
	})
}

func (h *UserHandler) fail(c *fiber.Ctx, err error, logMsg string) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}
}
