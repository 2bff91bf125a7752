package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mirasocial/mira/backend/internal/apperrors"
	"github.com/mirasocial/mira/backend/internal/models"
	"github.com/mirasocial/mira/backend/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notificationRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/stats", h.GetStats)
	g.GET("/notifications/:id", h.GetNotification)
	g.POST("/notifications/mark-read", h.MarkRead)
	g.POST("/notifications/mark-all-read", h.MarkAllRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// EnrichedNotification is a notification with actor info and a recency
// flag attached
type EnrichedNotification struct {
	models.Notification
	Actor  models.UserCompact `json:"actor"`
	Recent bool               `json:"is_recent"`
}

func (h *NotificationHandler) enrich(items []models.Notification) []EnrichedNotification {
	actors := make(map[uint]models.UserCompact)
	enriched := make([]EnrichedNotification, len(items))
	for i, n := range items {
		actor, ok := actors[n.ActorID]
		if !ok {
			if u, err := h.userRepository.GetUserByID(n.ActorID); err == nil {
				actor = u.ToCompact()
			}
			actors[n.ActorID] = actor
		}
		enriched[i] = EnrichedNotification{Notification: n, Actor: actor, Recent: n.IsRecent()}
	}
	return enriched
}

// ListNotifications lists the caller's notifications with read/type/recent
// filters, newest first, plus summary stats.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := parsePagination(c)

	opts := repositories.NotificationListOptions{
		Verb:  c.QueryParam("type"),
		Page:  page,
		Limit: limit,
	}
	if read := c.QueryParam("read"); read != "" {
		v, err := strconv.ParseBool(read)
		if err != nil {
			return apperrors.NewValidationError("Invalid read filter")
		}
		opts.Read = &v
	}
	if recent := c.QueryParam("recent"); recent != "" {
		v, err := strconv.ParseBool(recent)
		if err != nil {
			return apperrors.NewValidationError("Invalid recent filter")
		}
		opts.Recent = v
	}

	items, total, err := h.notificationRepository.GetByRecipientID(currentUserID, opts)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	stats, err := h.notificationRepository.GetStats(currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": h.enrich(items), "stats": stats},
		"meta":    paginationMeta(page, limit, total),
	})
}

// GetNotification retrieves one of the caller's notifications and marks it
// read on view.
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid notification ID")
	}

	notification, err := h.notificationRepository.GetByIDForRecipient(id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Notification")
		}
		return apperrors.NewInternalError(err)
	}

	if err := h.notificationRepository.MarkAsRead(notification); err != nil {
		return apperrors.NewInternalError(err)
	}

	enriched := h.enrich([]models.Notification{*notification})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": enriched[0]})
}

// GetStats returns total/unread/per-verb notification counts
func (h *NotificationHandler) GetStats(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	stats, err := h.notificationRepository.GetStats(currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats})
}

// MarkRead marks the given notifications as read, or every unread one when
// no IDs are supplied. IDs that are not the caller's unread notifications
// fail the whole request.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	var req models.MarkReadRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}

	if len(req.NotificationIDs) == 0 {
		count, err := h.notificationRepository.MarkAllAsRead(currentUserID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"data":    echo.Map{"marked_read": count},
		})
	}

	matching, err := h.notificationRepository.CountUnreadIn(currentUserID, req.NotificationIDs)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if matching != int64(len(req.NotificationIDs)) {
		return apperrors.NewValidationError("Some notifications not found or already read")
	}

	count, err := h.notificationRepository.MarkRead(currentUserID, req.NotificationIDs)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"marked_read": count},
	})
}

// MarkAllRead marks every unread notification of the caller as read
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	count, err := h.notificationRepository.MarkAllAsRead(currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"marked_read": count},
	})
}

// DeleteNotification deletes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid notification ID")
	}

	existed, err := h.notificationRepository.DeleteNotification(id, currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !existed {
		return apperrors.NewNotFoundError("Notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
