package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mirasocial/mira/backend/internal/apperrors"
	"github.com/mirasocial/mira/backend/internal/models"
	"github.com/mirasocial/mira/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteProfile)
	g.GET("/users", h.ListUsers)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

// GetUser retrieves another user's profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid user ID")
	}
	user, err := h.userRepository.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("User")
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("User")
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("User")
		}
		return apperrors.NewInternalError(err)
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewConflictError("Username already taken")
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// DeleteProfile deletes the authenticated user's account. Posts, comments,
// likes, follow edges and notifications go with it via cascade.
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.userRepository.DeleteUser(userID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListUsers retrieves a page of users
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, limit := parsePagination(c)

	users, total, err := h.userRepository.GetUsers(page, limit)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"users": users},
		"meta":    paginationMeta(page, limit, total),
	})
}

// SearchUsers searches users by username or bio
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return apperrors.NewValidationError("Search query is required")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": users}})
}
