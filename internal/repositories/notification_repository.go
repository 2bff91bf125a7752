package repositories

import (
	"time"

	"github.com/mirasocial/mira/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationListOptions carries list filters for notification queries
type NotificationListOptions struct {
	Read   *bool  // nil means both read and unread
	Verb   string // empty means all verbs
	Recent bool   // last 7 days only
	Page   int
	Limit  int
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) (bool, error)
	GetByRecipientID(recipientID uint, opts NotificationListOptions) ([]models.Notification, int64, error)
	GetByIDForRecipient(id, recipientID uint) (*models.Notification, error)
	GetStats(recipientID uint) (*models.NotificationStats, error)
	MarkAsRead(notification *models.Notification) error
	MarkRead(recipientID uint, ids []uint) (int64, error)
	MarkAllAsRead(recipientID uint) (int64, error)
	CountUnreadIn(recipientID uint, ids []uint) (int64, error)
	DeleteNotification(id, recipientID uint) (bool, error)
	DeleteByKey(recipientID, actorID uint, verb, targetKind string, targetID uint) (bool, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a NotificationRepository backed by gorm
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// CreateNotification inserts a notification, de-duplicating on the
// composite (recipient, actor, verb, target_kind, target_id) index in one
// atomic statement. Returns false when an identical notification already
// existed and nothing was written.
func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "recipient_id"}, {Name: "actor_id"}, {Name: "verb"},
			{Name: "target_kind"}, {Name: "target_id"},
		},
		DoNothing: true,
	}).Create(notification)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) listQuery(recipientID uint, opts NotificationListOptions) *gorm.DB {
	q := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if opts.Read != nil {
		q = q.Where("is_read = ?", *opts.Read)
	}
	if opts.Verb != "" {
		q = q.Where("verb = ?", opts.Verb)
	}
	if opts.Recent {
		q = q.Where("created_at >= ?", time.Now().AddDate(0, 0, -7))
	}
	return q
}

// GetByRecipientID lists a recipient's notifications, newest first
func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, opts NotificationListOptions) ([]models.Notification, int64, error) {
	q := r.listQuery(recipientID, opts)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	offset := (opts.Page - 1) * opts.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(opts.Limit).Find(&notifications).Error
	return notifications, total, err
}

// GetByIDForRecipient retrieves a notification only if it belongs to the recipient
func (r *postgresNotificationRepository) GetByIDForRecipient(id, recipientID uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetStats summarizes a recipient's notifications: totals and per-verb counts
func (r *postgresNotificationRepository) GetStats(recipientID uint) (*models.NotificationStats, error) {
	stats := &models.NotificationStats{ByVerb: map[string]int64{}}

	base := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if err := base.Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&stats.Unread).Error; err != nil {
		return nil, err
	}

	type verbCount struct {
		Verb  string
		Count int64
	}
	var rows []verbCount
	if err := r.db.Model(&models.Notification{}).
		Select("verb, COUNT(*) as count").
		Where("recipient_id = ?", recipientID).
		Group("verb").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByVerb[row.Verb] = row.Count
	}
	return stats, nil
}

// MarkAsRead marks one notification read and stamps read_at
func (r *postgresNotificationRepository) MarkAsRead(notification *models.Notification) error {
	if notification.IsRead {
		return nil
	}
	now := time.Now()
	err := r.db.Model(notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
	if err != nil {
		return err
	}
	notification.IsRead = true
	notification.ReadAt = &now
	return nil
}

// MarkRead marks the given unread notifications of a recipient as read
func (r *postgresNotificationRepository) MarkRead(recipientID uint, ids []uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND id IN ?", recipientID, false, ids).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, res.Error
}

// MarkAllAsRead marks every unread notification of a recipient as read
func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, res.Error
}

// CountUnreadIn counts how many of the given IDs are unread notifications
// belonging to the recipient, used to validate mark-read requests
func (r *postgresNotificationRepository) CountUnreadIn(recipientID uint, ids []uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND id IN ?", recipientID, false, ids).
		Count(&count).Error
	return count, err
}

// DeleteNotification removes a notification owned by the recipient
func (r *postgresNotificationRepository) DeleteNotification(id, recipientID uint) (bool, error) {
	res := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).Delete(&models.Notification{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByKey removes the notification matching the de-duplication key.
// Used when a like or follow is withdrawn; a missing row is not an error.
func (r *postgresNotificationRepository) DeleteByKey(recipientID, actorID uint, verb, targetKind string, targetID uint) (bool, error) {
	res := r.db.Where(
		"recipient_id = ? AND actor_id = ? AND verb = ? AND target_kind = ? AND target_id = ?",
		recipientID, actorID, verb, targetKind, targetID,
	).Delete(&models.Notification{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
