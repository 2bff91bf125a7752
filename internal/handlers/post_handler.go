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

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	commentRepository repositories.CommentRepository
	likeRepository    repositories.LikeRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	likeRepo repositories.LikeRepository,
) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		commentRepository: commentRepo,
		likeRepository:    likeRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.ListPosts)
	g.GET("/posts/my-posts", h.MyPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/toggle-publish", h.TogglePublish)
	g.GET("/posts/:id/comments", h.GetPostComments)
}

// EnrichedPost is a post with author info, a content excerpt and like count
type EnrichedPost struct {
	models.Post
	Author     models.UserCompact `json:"author"`
	Excerpt    string             `json:"excerpt"`
	LikesCount int64              `json:"likes_count"`
}

func (h *PostHandler) enrich(posts []models.Post) []EnrichedPost {
	// Author lookups are memoized per response; a feed page usually
	// repeats the same handful of authors.
	authors := make(map[uint]models.UserCompact)
	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		author, ok := authors[p.AuthorID]
		if !ok {
			if u, err := h.userRepository.GetUserByID(p.AuthorID); err == nil {
				author = u.ToCompact()
			}
			authors[p.AuthorID] = author
		}
		likes, _ := h.likeRepository.GetLikesCountByPostID(p.ID)
		enriched[i] = EnrichedPost{Post: p, Author: author, Excerpt: p.Excerpt(), LikesCount: likes}
	}
	return enriched
}

// CreatePost creates a post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	post := &models.Post{
		AuthorID:    currentUserID,
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		IsPublished: true,
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	if err := h.postRepository.CreatePost(post); err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

// ListPosts lists posts visible to the caller with filtering and ordering
func (h *PostHandler) ListPosts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := parsePagination(c)

	opts := repositories.PostListOptions{
		Search:   c.QueryParam("search"),
		Ordering: c.QueryParam("ordering"),
		Page:     page,
		Limit:    limit,
	}
	if author := c.QueryParam("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 32)
		if err != nil {
			return apperrors.NewValidationError("Invalid author filter")
		}
		opts.AuthorID = uint(id)
	}
	if published := c.QueryParam("published"); published != "" {
		v, err := strconv.ParseBool(published)
		if err != nil {
			return apperrors.NewValidationError("Invalid published filter")
		}
		opts.Published = &v
	}

	posts, total, err := h.postRepository.ListVisiblePosts(currentUserID, opts)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": h.enrich(posts)},
		"meta":    paginationMeta(page, limit, total),
	})
}

// MyPosts lists the caller's posts, unpublished included
func (h *PostHandler) MyPosts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := parsePagination(c)

	posts, total, err := h.postRepository.ListPostsByAuthor(currentUserID, page, limit)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": h.enrich(posts)},
		"meta":    paginationMeta(page, limit, total),
	})
}

// GetPost retrieves a single post the caller may see
func (h *PostHandler) GetPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid post ID")
	}

	post, err := h.postRepository.GetVisiblePostByID(id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Post")
		}
		return apperrors.NewInternalError(err)
	}

	enriched := h.enrich([]models.Post{*post})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": enriched[0]})
}

// getOwnPost loads a post and checks the caller owns it
func (h *PostHandler) getOwnPost(c echo.Context, currentUserID uint) (*models.Post, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Post")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if post.AuthorID != currentUserID {
		return nil, apperrors.NewForbiddenError("You can only modify your own posts")
	}
	return post, nil
}

// UpdatePost updates a post owned by the caller
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.getOwnPost(c, currentUserID)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.ImageURL != "" {
		post.ImageURL = req.ImageURL
	}

	if err := h.postRepository.UpdatePost(post); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.getOwnPost(c, currentUserID)
	if err != nil {
		return err
	}

	if err := h.postRepository.DeletePost(post.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// TogglePublish flips the published flag of a post owned by the caller
func (h *PostHandler) TogglePublish(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.getOwnPost(c, currentUserID)
	if err != nil {
		return err
	}

	post.IsPublished = !post.IsPublished
	if err := h.postRepository.UpdatePost(post); err != nil {
		return apperrors.NewInternalError(err)
	}

	message := "Post unpublished successfully"
	if post.IsPublished {
		message = "Post published successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"is_published": post.IsPublished, "message": message},
	})
}

// GetPostComments lists active top-level comments of a visible post
func (h *PostHandler) GetPostComments(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := parsePagination(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return apperrors.NewValidationError("Invalid post ID")
	}

	if _, err := h.postRepository.GetVisiblePostByID(id, currentUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("Post")
		}
		return apperrors.NewInternalError(err)
	}

	comments, total, err := h.commentRepository.GetTopLevelComments(id, page, limit)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": comments},
		"meta":    paginationMeta(page, limit, total),
	})
}
