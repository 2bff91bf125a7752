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

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	fanout         *notifications.Fanout
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	fanout *notifications.Fanout,
) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		userRepository: userRepo,
		fanout:         fanout,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.POST("/posts/:id/unlike", h.UnlikePost)
	g.POST("/posts/:id/toggle-like", h.ToggleLike)
	g.GET("/posts/:id/likes", h.GetLikes)
	g.GET("/posts/:id/like-status", h.GetLikeStatus)
}

// resolvePost loads a post the caller may see
func (h *LikeHandler) resolvePost(c echo.Context, currentUserID uint) (*models.Post, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid post ID")
	}
	post, err := h.postRepository.GetVisiblePostByID(id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Post")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return post, nil
}

// LikePost likes a post. The insert is the duplicate check: the unique
// (post, user) index rejects a second like atomically and the conflict is
// translated to an already-liked response instead of leaking.
func (h *LikeHandler) LikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.resolvePost(c, currentUserID)
	if err != nil {
		return err
	}

	liked, err := h.like(post, currentUserID)
	if err != nil {
		return err
	}
	if !liked {
		// Same shape as the error handler would emit, plus the state hint
		return c.JSON(apperrors.ErrAlreadyLiked.Status, echo.Map{
			"success": false,
			"error":   apperrors.ErrAlreadyLiked.Message,
			"code":    apperrors.ErrAlreadyLiked.Code,
			"liked":   true,
		})
	}

	count, _ := h.likeRepository.GetLikesCountByPostID(post.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data": echo.Map{
			"message":     "You liked \"" + post.Title + "\"",
			"liked":       true,
			"likes_count": count,
		},
	})
}

// like inserts the row and fans out the notification. Returns false when
// the post was already liked.
func (h *LikeHandler) like(post *models.Post, userID uint) (bool, error) {
	row := &models.Like{PostID: post.ID, UserID: userID}
	if err := h.likeRepository.CreateLike(row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, apperrors.NewInternalError(err)
	}

	if user, err := h.userRepository.GetUserByID(userID); err == nil {
		h.fanout.NotifyLike(post, user)
	}
	return true, nil
}

// UnlikePost removes the caller's like from a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.resolvePost(c, currentUserID)
	if err != nil {
		return err
	}

	existed, err := h.likeRepository.DeleteLike(post.ID, currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !existed {
		return apperrors.ErrNotLiked
	}

	h.fanout.DeleteLikeNotification(post, currentUserID)

	count, _ := h.likeRepository.GetLikesCountByPostID(post.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"message":     "You unliked \"" + post.Title + "\"",
			"liked":       false,
			"likes_count": count,
		},
	})
}

// ToggleLike unlikes a liked post and likes an unliked one. Delete-first
// ordering plus the unique index keep a concurrent double submission from
// producing two rows or two notifications.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.resolvePost(c, currentUserID)
	if err != nil {
		return err
	}

	existed, err := h.likeRepository.DeleteLike(post.ID, currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	var liked bool
	var status int
	if existed {
		h.fanout.DeleteLikeNotification(post, currentUserID)
		liked = false
		status = http.StatusOK
	} else {
		// The like may race another toggle; either way the end state is liked
		if _, err := h.like(post, currentUserID); err != nil {
			return err
		}
		liked = true
		status = http.StatusCreated
	}

	count, _ := h.likeRepository.GetLikesCountByPostID(post.ID)
	return c.JSON(status, echo.Map{
		"success": true,
		"data":    echo.Map{"liked": liked, "likes_count": count},
	})
}

// GetLikes lists the users who liked a post
func (h *LikeHandler) GetLikes(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.resolvePost(c, currentUserID)
	if err != nil {
		return err
	}

	likes, err := h.likeRepository.GetLikesByPostID(post.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	likers := make([]models.UserCompact, 0, len(likes))
	for _, like := range likes {
		if user, err := h.userRepository.GetUserByID(like.UserID); err == nil {
			likers = append(likers, user.ToCompact())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"likes": likers, "count": len(likers)},
	})
}

// GetLikeStatus reports whether the caller has liked the post
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.resolvePost(c, currentUserID)
	if err != nil {
		return err
	}

	liked, err := h.likeRepository.HasUserLikedPost(post.ID, currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	count, _ := h.likeRepository.GetLikesCountByPostID(post.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"liked": liked, "likes_count": count},
	})
}
