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

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	fanout            *notifications.Fanout
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	fanout *notifications.Fanout,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		fanout:            fanout,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.GET("/comments/my-comments", h.MyComments)
	g.GET("/comments/:id", h.GetComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/reply", h.ReplyToComment)
	g.GET("/comments/:id/replies", h.GetReplies)
}

// CreateComment creates a comment on a post the caller can see. A parent_id
// in the body makes it a reply; the parent must be a top-level comment on
// the same post.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	post, err := h.postRepository.GetVisiblePostByID(req.PostID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Post")
		}
		return apperrors.NewInternalError(err)
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetActiveCommentByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("Comment")
			}
			return apperrors.NewInternalError(err)
		}
		if parent.IsReply() {
			return apperrors.ErrNestedReply
		}
		if parent.PostID != post.ID {
			return apperrors.ErrParentPostMismatch
		}
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: currentUserID,
		ParentID: req.ParentID,
		Content:  req.Content,
		Status:   models.CommentStatusActive,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return apperrors.NewInternalError(err)
	}

	if author, err := h.userRepository.GetUserByID(currentUserID); err == nil {
		h.fanout.NotifyComment(post, comment, parent, author)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// ReplyToComment creates a reply to a top-level comment. Replying to a
// reply is rejected; nesting stays one level deep.
func (h *CommentHandler) ReplyToComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	parentID, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid comment ID")
	}

	var req models.ReplyRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	parent, err := h.commentRepository.GetActiveCommentByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Comment")
		}
		return apperrors.NewInternalError(err)
	}
	if parent.IsReply() {
		return apperrors.ErrNestedReply
	}

	post, err := h.postRepository.GetVisiblePostByID(parent.PostID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Post")
		}
		return apperrors.NewInternalError(err)
	}

	reply := &models.Comment{
		PostID:   post.ID,
		AuthorID: currentUserID,
		ParentID: &parent.ID,
		Content:  req.Content,
		Status:   models.CommentStatusActive,
	}
	if err := h.commentRepository.CreateComment(reply); err != nil {
		return apperrors.NewInternalError(err)
	}

	if author, err := h.userRepository.GetUserByID(currentUserID); err == nil {
		h.fanout.NotifyComment(post, reply, parent, author)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": reply})
}

// GetComment retrieves an active comment
func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid comment ID")
	}

	comment, err := h.commentRepository.GetActiveCommentByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Comment")
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comment})
}

// GetReplies lists active replies to a comment
func (h *CommentHandler) GetReplies(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid comment ID")
	}

	if _, err := h.commentRepository.GetActiveCommentByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Comment")
		}
		return apperrors.NewInternalError(err)
	}

	replies, err := h.commentRepository.GetReplies(id)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"replies": replies}})
}

// MyComments lists the caller's active comments
func (h *CommentHandler) MyComments(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := parsePagination(c)

	comments, total, err := h.commentRepository.GetCommentsByAuthor(currentUserID, page, limit)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": comments},
		"meta":    paginationMeta(page, limit, total),
	})
}

// getOwnComment loads an active comment and checks the caller owns it
func (h *CommentHandler) getOwnComment(c echo.Context, currentUserID uint) (*models.Comment, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid comment ID")
	}

	comment, err := h.commentRepository.GetActiveCommentByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Comment")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if comment.AuthorID != currentUserID {
		return nil, apperrors.NewForbiddenError("You can only modify your own comments")
	}
	return comment, nil
}

// UpdateComment updates a comment owned by the caller
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	comment, err := h.getOwnComment(c, currentUserID)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comment})
}

// DeleteComment soft-deletes a comment owned by the caller. The row stays;
// only the lifecycle state changes.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	comment, err := h.getOwnComment(c, currentUserID)
	if err != nil {
		return err
	}

	if err := h.commentRepository.SoftDeleteComment(comment.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
