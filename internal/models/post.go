package models

import "time"

// Post represents a user post. Unpublished posts are only visible to their
// author; the visibility filter is applied inside the repository queries.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	AuthorID    uint      `json:"author_id" gorm:"index"`
	Title       string    `json:"title" gorm:"size:200"`
	Content     string    `json:"content" gorm:"type:text"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsPublished bool      `json:"is_published" gorm:"default:true;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// Excerpt returns a short preview of the post content
func (p *Post) Excerpt() string {
	const max = 150
	if len(p.Content) > max {
		return p.Content[:max] + "..."
	}
	return p.Content
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Content     string `json:"content" validate:"required,min=1"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsPublished *bool  `json:"is_published,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Title    string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content  string `json:"content,omitempty" validate:"omitempty,min=1"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}
