package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mirasocial/mira/backend/internal/apperrors"
	"github.com/mirasocial/mira/backend/internal/models"
	"github.com/mirasocial/mira/backend/internal/notifications"
	"github.com/mirasocial/mira/backend/internal/repositories"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	fanout           *notifications.Fanout
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, fanout *notifications.Fanout) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		fanout:           fanout,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.POST("/users/:id/toggle-follow", h.ToggleFollow)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/followers", h.GetOwnFollowers)
	g.GET("/following", h.GetOwnFollowing)
}

// resolveTarget parses the :id param and confirms the user exists
func (h *FollowHandler) resolveTarget(c echo.Context) (*models.User, error) {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid user ID")
	}
	target, err := h.userRepository.GetUserByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("User")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return target, nil
}

// FollowUser creates a follow edge from the caller to the target user.
// Self-follow is rejected here, once, as service-layer policy; the storage
// layer only enforces pair uniqueness.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}
	if currentUserID == target.ID {
		return apperrors.ErrSelfFollow
	}

	if err := h.follow(currentUserID, target.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"following": true},
	})
}

// follow inserts the edge, relying on the unique index for duplicates, then
// bumps counters and fans out the notification.
func (h *FollowHandler) follow(followerID, followingID uint) error {
	edge := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := h.followRepository.CreateFollow(edge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAlreadyFollowing
		}
		return apperrors.NewInternalError(err)
	}

	h.userRepository.IncrementFollowingCount(followerID)
	h.userRepository.IncrementFollowersCount(followingID)

	follower, err := h.userRepository.GetUserByID(followerID)
	if err == nil {
		h.fanout.NotifyFollow(followingID, follower)
	}
	return nil
}

// UnfollowUser removes the follow edge from the caller to the target user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if err := h.unfollow(currentUserID, target.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"following": false},
	})
}

func (h *FollowHandler) unfollow(followerID, followingID uint) error {
	existed, err := h.followRepository.DeleteFollow(followerID, followingID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !existed {
		return apperrors.ErrNotFollowing
	}

	h.userRepository.DecrementFollowingCount(followerID)
	h.userRepository.DecrementFollowersCount(followingID)

	// Withdraw the follow notification if it is still around
	h.fanout.DeleteFollowNotification(followingID, followerID)
	return nil
}

// ToggleFollow follows when not following and unfollows otherwise. The
// delete-first ordering keeps it race-safe: each branch is a single atomic
// statement against the edge.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}
	if currentUserID == target.ID {
		return apperrors.ErrSelfFollow
	}

	existed, err := h.followRepository.DeleteFollow(currentUserID, target.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if existed {
		h.userRepository.DecrementFollowingCount(currentUserID)
		h.userRepository.DecrementFollowersCount(target.ID)
		h.fanout.DeleteFollowNotification(target.ID, currentUserID)

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"data":    echo.Map{"following": false, "message": "You unfollowed " + target.Username},
		})
	}

	if err := h.follow(currentUserID, target.ID); err != nil {
		// A concurrent request won the follow; the end state is followed
		if errors.Is(err, apperrors.ErrAlreadyFollowing) {
			return c.JSON(http.StatusOK, echo.Map{
				"success": true,
				"data":    echo.Map{"following": true, "message": "You are now following " + target.Username},
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"following": true, "message": "You are now following " + target.Username},
	})
}

// GetFollowers lists the users following the target user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}
	return h.respondFollowers(c, target.ID)
}

// GetFollowing lists the users the target user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}
	return h.respondFollowing(c, target.ID)
}

// GetOwnFollowers lists the callers's followers
func (h *FollowHandler) GetOwnFollowers(c echo.Context) error {
	return h.respondFollowers(c, getUserIDFromContext(c))
}

// GetOwnFollowing lists who the caller follows
func (h *FollowHandler) GetOwnFollowing(c echo.Context) error {
	return h.respondFollowing(c, getUserIDFromContext(c))
}

func (h *FollowHandler) respondFollowers(c echo.Context, userID uint) error {
	users, err := h.followRepository.GetFollowers(userID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	count, err := h.followRepository.GetFollowersCount(userID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"followers": compactUsers(users), "count": count},
	})
}

func (h *FollowHandler) respondFollowing(c echo.Context, userID uint) error {
	users, err := h.followRepository.GetFollowing(userID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	count, err := h.followRepository.GetFollowingCount(userID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"following": compactUsers(users), "count": count},
	})
}

func compactUsers(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
