// Package notifications derives recipient notifications from content
// actions. All fan-out is synchronous within the triggering request; the
// composite unique index on the notification table is what prevents
// duplicates under concurrent identical requests.
package notifications

import (
	"github.com/mirasocial/mira/backend/internal/models"
	"github.com/mirasocial/mira/backend/internal/repositories"
)

// Fanout creates and withdraws notifications for social actions
type Fanout struct {
	notificationRepo repositories.NotificationRepository
}

// NewFanout creates a new Fanout
func NewFanout(notificationRepo repositories.NotificationRepository) *Fanout {
	return &Fanout{notificationRepo: notificationRepo}
}

// Notify records a notification for an action. Self-actions are a no-op.
// A duplicate of the (recipient, actor, verb, target) key is silently
// absorbed and returns (nil, nil). When message is empty a default one is
// derived from the verb.
func (f *Fanout) Notify(recipientID, actorID uint, actorName, verb, targetKind string, targetID uint, message string) (*models.Notification, error) {
	if recipientID == actorID {
		return nil, nil
	}

	if message == "" {
		message = defaultMessage(actorName, verb, targetKind)
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Verb:        verb,
		TargetKind:  targetKind,
		TargetID:    targetID,
		Message:     message,
	}

	created, err := f.notificationRepo.CreateNotification(notification)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}
	return notification, nil
}

// NotifyLike notifies a post author that someone liked their post
func (f *Fanout) NotifyLike(post *models.Post, liker *models.User) (*models.Notification, error) {
	return f.Notify(post.AuthorID, liker.ID, liker.Username, models.VerbLike, models.TargetPost, post.ID, "")
}

// DeleteLikeNotification withdraws the like notification after an unlike.
// Best-effort: a missing notification is not an error.
func (f *Fanout) DeleteLikeNotification(post *models.Post, unlikerID uint) error {
	_, err := f.notificationRepo.DeleteByKey(post.AuthorID, unlikerID, models.VerbLike, models.TargetPost, post.ID)
	return err
}

// NotifyComment notifies the post author about a new comment and, when the
// comment is a reply, also the parent comment's author.
func (f *Fanout) NotifyComment(post *models.Post, comment *models.Comment, parent *models.Comment, author *models.User) error {
	if _, err := f.Notify(post.AuthorID, author.ID, author.Username, models.VerbComment, models.TargetPost, post.ID, ""); err != nil {
		return err
	}
	if parent != nil {
		if _, err := f.Notify(parent.AuthorID, author.ID, author.Username, models.VerbReply, models.TargetComment, parent.ID, ""); err != nil {
			return err
		}
	}
	return nil
}

// NotifyFollow notifies a user that someone started following them
func (f *Fanout) NotifyFollow(followedID uint, follower *models.User) (*models.Notification, error) {
	return f.Notify(followedID, follower.ID, follower.Username, models.VerbFollow, "", 0, "")
}

// DeleteFollowNotification withdraws the follow notification after an
// unfollow. Best-effort: a missing notification is not an error.
func (f *Fanout) DeleteFollowNotification(followedID, followerID uint) error {
	_, err := f.notificationRepo.DeleteByKey(followedID, followerID, models.VerbFollow, "", 0)
	return err
}

func defaultMessage(actorName, verb, targetKind string) string {
	target := TargetDisplay(targetKind)
	switch verb {
	case models.VerbLike:
		return actorName + " liked your " + target
	case models.VerbComment:
		return actorName + " commented on your " + target
	case models.VerbFollow:
		return actorName + " started following you"
	case models.VerbReply:
		return actorName + " replied to your " + target
	case models.VerbMention:
		if target != "" {
			return actorName + " mentioned you in a " + target
		}
		return actorName + " mentioned you"
	default:
		return actorName + " interacted with your content"
	}
}

// TargetDisplay resolves the display text for a notification target by
// matching over the variant's kind.
func TargetDisplay(kind string) string {
	switch kind {
	case models.TargetPost:
		return "post"
	case models.TargetComment:
		return "comment"
	default:
		return ""
	}
}
