package repositories

import (
	"github.com/mirasocial/mira/backend/internal/models"
	"gorm.io/gorm"
)

// PostListOptions carries list filters and ordering for post queries
type PostListOptions struct {
	AuthorID  uint   // 0 means no author filter
	Published *bool  // nil means no published filter beyond visibility
	Search    string // matches title or content
	Ordering  string // created_at, -created_at, updated_at, -updated_at, title
	Page      int
	Limit     int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetVisiblePostByID(id, viewerID uint) (*models.Post, error)
	ListVisiblePosts(viewerID uint, opts PostListOptions) ([]models.Post, int64, error)
	ListPostsByAuthor(authorID uint, page, limit int) ([]models.Post, int64, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
	GetFeed(authorIDs []uint, page, limit int) ([]models.Post, int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post by ID regardless of visibility
func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetVisiblePostByID retrieves a post only if it is published or owned by
// the viewer. The filter lives in the query so an unpublished post is
// indistinguishable from a missing one.
func (r *PostgresPostRepository) GetVisiblePostByID(id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("id = ? AND (is_published = ? OR author_id = ?)", id, true, viewerID).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListVisiblePosts lists posts the viewer may see, with filters and ordering
func (r *PostgresPostRepository) ListVisiblePosts(viewerID uint, opts PostListOptions) ([]models.Post, int64, error) {
	q := r.db.Model(&models.Post{}).Where("is_published = ? OR author_id = ?", true, viewerID)

	if opts.AuthorID != 0 {
		q = q.Where("author_id = ?", opts.AuthorID)
	}
	if opts.Published != nil {
		q = q.Where("is_published = ?", *opts.Published)
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		q = q.Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	offset := (opts.Page - 1) * opts.Limit
	err := q.Order(orderClause(opts.Ordering)).Offset(offset).Limit(opts.Limit).Find(&posts).Error
	return posts, total, err
}

// ListPostsByAuthor lists all posts of one author, unpublished included
func (r *PostgresPostRepository) ListPostsByAuthor(authorID uint, page, limit int) ([]models.Post, int64, error) {
	q := r.db.Model(&models.Post{}).Where("author_id = ?", authorID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

// UpdatePost updates an existing post
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

// DeletePost deletes a post by ID
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}

// GetFeed lists published posts by the given authors, newest first. The
// feed is recomputed on every call; nothing is materialized.
func (r *PostgresPostRepository) GetFeed(authorIDs []uint, page, limit int) ([]models.Post, int64, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, 0, nil
	}

	q := r.db.Model(&models.Post{}).Where("author_id IN ? AND is_published = ?", authorIDs, true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

// orderClause maps a requested ordering onto a whitelisted ORDER BY
func orderClause(ordering string) string {
	switch ordering {
	case "created_at":
		return "created_at ASC"
	case "updated_at":
		return "updated_at ASC"
	case "-updated_at":
		return "updated_at DESC"
	case "title":
		return "title ASC"
	default:
		return "created_at DESC"
	}
}
