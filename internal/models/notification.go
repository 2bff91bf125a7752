package models

import "time"

// Notification verbs
const (
	VerbLike    = "like"
	VerbComment = "comment"
	VerbFollow  = "follow"
	VerbReply   = "reply"
	VerbMention = "mention"
)

// Notification target kinds. TargetKind/TargetID form a tagged variant; a
// target-less notification (follow) uses the zero values rather than NULLs
// so the composite unique index still applies to it.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Notification represents a user notification. De-duplication key is
// (recipient, actor, verb, target_kind, target_id); the message is
// deliberately not part of the key.
type Notification struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RecipientID uint       `json:"recipient_id" gorm:"index;uniqueIndex:idx_notification_dedup"`
	ActorID     uint       `json:"actor_id" gorm:"uniqueIndex:idx_notification_dedup"`
	Verb        string     `json:"verb" gorm:"size:30;index;uniqueIndex:idx_notification_dedup"`
	TargetKind  string     `json:"target_kind,omitempty" gorm:"size:20;uniqueIndex:idx_notification_dedup"`
	TargetID    uint       `json:"target_id,omitempty" gorm:"uniqueIndex:idx_notification_dedup"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	ReadAt      *time.Time `json:"read_at,omitempty"`

	Recipient *User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Actor     *User `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
}

// IsRecent reports whether the notification was created in the last 24 hours
func (n *Notification) IsRecent() bool {
	return time.Since(n.CreatedAt) < 24*time.Hour
}

// NotificationStats summarizes a recipient's notifications
type NotificationStats struct {
	Total  int64            `json:"total"`
	Unread int64            `json:"unread"`
	ByVerb map[string]int64 `json:"by_verb"`
}

// MarkReadRequest defines the request body for marking notifications read.
// An empty NotificationIDs marks everything unread as read.
type MarkReadRequest struct {
	NotificationIDs []uint `json:"notification_ids,omitempty"`
}
