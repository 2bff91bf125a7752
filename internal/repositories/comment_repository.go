package repositories

import (
	"github.com/mirasocial/mira/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetActiveCommentByID(id uint) (*models.Comment, error)
	GetTopLevelComments(postID uint, page, limit int) ([]models.Comment, int64, error)
	GetReplies(parentID uint) ([]models.Comment, error)
	GetCommentsByAuthor(authorID uint, page, limit int) ([]models.Comment, int64, error)
	UpdateComment(comment *models.Comment) error
	SoftDeleteComment(id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID regardless of status
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetActiveCommentByID retrieves a comment by ID, excluding removed ones
func (r *PostgresCommentRepository) GetActiveCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Where("id = ? AND status = ?", id, models.CommentStatusActive).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetTopLevelComments retrieves active comments of a post that are not
// replies, oldest first
func (r *PostgresCommentRepository) GetTopLevelComments(postID uint, page, limit int) ([]models.Comment, int64, error) {
	q := r.db.Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL AND status = ?", postID, models.CommentStatusActive)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	offset := (page - 1) * limit
	err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, total, err
}

// GetReplies retrieves active replies to a comment, oldest first
func (r *PostgresCommentRepository) GetReplies(parentID uint) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.Where("parent_id = ? AND status = ?", parentID, models.CommentStatusActive).
		Order("created_at ASC").Find(&replies).Error
	return replies, err
}

// GetCommentsByAuthor retrieves a user's active comments, newest first
func (r *PostgresCommentRepository) GetCommentsByAuthor(authorID uint, page, limit int) ([]models.Comment, int64, error) {
	q := r.db.Model(&models.Comment{}).
		Where("author_id = ? AND status = ?", authorID, models.CommentStatusActive)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, total, err
}

// UpdateComment updates an existing comment
func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// SoftDeleteComment flips a comment to the removed state; the row stays
func (r *PostgresCommentRepository) SoftDeleteComment(id uint) error {
	return r.db.Model(&models.Comment{}).Where("id = ?", id).
		Update("status", models.CommentStatusRemoved).Error
}
