package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mirasocial/mira/backend/internal/apperrors"
	"github.com/mirasocial/mira/backend/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository   repositories.PostRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	likeRepository   repositories.LikeRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
		likeRepository:   likeRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts/feed", h.GetFeed)
}

// GetFeed returns the published posts of everyone the caller follows,
// newest first. The feed is recomputed on every request. Following nobody
// is reported distinctly from an empty result set so clients can show
// guidance instead of "no posts".
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := parsePagination(c)

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	if len(followingIDs) == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"success":         true,
			"data":            echo.Map{"posts": []interface{}{}},
			"following_count": 0,
			"message":         "You are not following anyone yet. Follow some users to see their posts here!",
			"meta":            paginationMeta(page, limit, 0),
		})
	}

	posts, total, err := h.postRepository.GetFeed(followingIDs, page, limit)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	// Reuse the post enrichment so feed entries carry author and likes
	enricher := &PostHandler{
		postRepository: h.postRepository,
		userRepository: h.userRepository,
		likeRepository: h.likeRepository,
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"data":            echo.Map{"posts": enricher.enrich(posts)},
		"following_count": len(followingIDs),
		"meta":            paginationMeta(page, limit, total),
	})
}
