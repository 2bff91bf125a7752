package models

import "time"

// CommentStatus is the lifecycle state of a comment. Soft-deleted comments
// keep their row and flip to StatusRemoved.
type CommentStatus string

const (
	CommentStatusActive  CommentStatus = "active"
	CommentStatusRemoved CommentStatus = "removed"
)

// Comment represents a comment on a post. ParentID links a reply to its
// top-level comment; nesting is at most one level deep, which the handlers
// enforce before insert.
type Comment struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	PostID    uint          `json:"post_id" gorm:"index"`
	AuthorID  uint          `json:"author_id" gorm:"index"`
	ParentID  *uint         `json:"parent_id,omitempty" gorm:"index"`
	Content   string        `json:"content" gorm:"type:text"`
	Status    CommentStatus `json:"status" gorm:"size:20;default:'active';index"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	Post   *Post    `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Author *User    `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Parent *Comment `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

// IsReply reports whether the comment is a reply to another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// IsActive reports whether the comment is visible
func (c *Comment) IsActive() bool {
	return c.Status == CommentStatusActive
}

// CreateCommentRequest defines the request body for creating a new comment.
// ParentID turns the comment into a reply; the parent must belong to PostID.
type CreateCommentRequest struct {
	PostID   uint   `json:"post_id" validate:"required"`
	ParentID *uint  `json:"parent_id,omitempty"`
	Content  string `json:"content" validate:"required,min=1,max=500"`
}

// ReplyRequest defines the request body for replying to a comment
type ReplyRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
