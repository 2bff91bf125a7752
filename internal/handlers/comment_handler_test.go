package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirasocial/mira/backend/internal/models"
)

func TestCommentAndReplyFlow(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "alice-post", true, time.Now())

	rec, resp := doRequest(t, e, http.MethodPost, "/api/v1/comments", bob.ID, map[string]interface{}{
		"post_id": post.ID,
		"content": "nice post",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	commentID := uint(dataField(t, resp)["id"].(float64))

	rec, resp = doRequest(t, e, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/reply", commentID), alice.ID, map[string]interface{}{
		"content": "thanks",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	reply := dataField(t, resp)
	assert.EqualValues(t, commentID, reply["parent_id"])
	assert.EqualValues(t, post.ID, reply["post_id"])

	rec, resp = doRequest(t, e, http.MethodGet, fmt.Sprintf("/api/v1/comments/%d/replies", commentID), bob.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	replies := dataField(t, resp)["replies"].([]interface{})
	assert.Len(t, replies, 1)
}

func TestReplyToReplyRejected(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "alice-post", true, time.Now())

	parent := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "top", Status: models.CommentStatusActive}
	require.NoError(t, db.Create(parent).Error)
	reply := &models.Comment{PostID: post.ID, AuthorID: alice.ID, ParentID: &parent.ID, Content: "level one", Status: models.CommentStatusActive}
	require.NoError(t, db.Create(reply).Error)

	rec, resp := doRequest(t, e, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/reply", reply.ID), bob.ID, map[string]interface{}{
		"content": "level two",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NESTED_REPLY", resp["code"])

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestCreateCommentWithParentValidatesPost(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	postA := seedPost(t, db, alice.ID, "post-a", true, time.Now())
	postB := seedPost(t, db, alice.ID, "post-b", true, time.Now())

	parent := &models.Comment{PostID: postA.ID, AuthorID: bob.ID, Content: "on post a", Status: models.CommentStatusActive}
	require.NoError(t, db.Create(parent).Error)

	// Parent on a different post is rejected
	rec, resp := doRequest(t, e, http.MethodPost, "/api/v1/comments", alice.ID, map[string]interface{}{
		"post_id":   postB.ID,
		"parent_id": parent.ID,
		"content":   "mismatched",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARENT_POST_MISMATCH", resp["code"])

	// Same post works and produces a reply
	rec, resp = doRequest(t, e, http.MethodPost, "/api/v1/comments", alice.ID, map[string]interface{}{
		"post_id":   postA.ID,
		"parent_id": parent.ID,
		"content":   "matched",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, parent.ID, dataField(t, resp)["parent_id"])
}

func TestCommentOnInvisiblePost(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	draft := seedPost(t, db, alice.ID, "alice-draft", false, time.Now())

	rec, resp := doRequest(t, e, http.MethodPost, "/api/v1/comments", bob.ID, map[string]interface{}{
		"post_id": draft.ID,
		"content": "should not land",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", resp["code"])

	// The author can comment on their own draft
	rec, _ = doRequest(t, e, http.MethodPost, "/api/v1/comments", alice.ID, map[string]interface{}{
		"post_id": draft.ID,
		"content": "note to self",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDeleteCommentIsSoft(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "alice-post", true, time.Now())

	comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "spam", Status: models.CommentStatusActive}
	require.NoError(t, db.Create(comment).Error)

	rec, _ := doRequest(t, e, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", comment.ID), bob.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The row survives in removed state
	var stored models.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.Equal(t, models.CommentStatusRemoved, stored.Status)

	// Reads and edits now treat it as gone
	rec, _ = doRequest(t, e, http.MethodGet, fmt.Sprintf("/api/v1/comments/%d", comment.ID), bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp := doRequest(t, e, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), alice.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := dataField(t, resp)["comments"].([]interface{})
	assert.Empty(t, comments)
}

func TestUpdateCommentOwnershipEnforced(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "alice-post", true, time.Now())

	comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "original", Status: models.CommentStatusActive}
	require.NoError(t, db.Create(comment).Error)

	rec, resp := doRequest(t, e, http.MethodPut, fmt.Sprintf("/api/v1/comments/%d", comment.ID), alice.ID, map[string]interface{}{
		"content": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", resp["code"])

	rec, resp = doRequest(t, e, http.MethodPut, fmt.Sprintf("/api/v1/comments/%d", comment.ID), bob.ID, map[string]interface{}{
		"content": "edited",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", dataField(t, resp)["content"])
}

func TestCommentNotifiesPostAuthorAndParentAuthor(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "alice-post", true, time.Now())

	rec, resp := doRequest(t, e, http.MethodPost, "/api/v1/comments", bob.ID, map[string]interface{}{
		"post_id": post.ID,
		"content": "first",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	commentID := uint(dataField(t, resp)["id"].(float64))

	var notifications []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", alice.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.VerbComment, notifications[0].Verb)
	assert.Equal(t, "bob commented on your post", notifications[0].Message)

	// Alice replies to bob's comment; bob gets a reply notification, and
	// alice does not get notified about her own activity.
	rec, _ = doRequest(t, e, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/reply", commentID), alice.ID, map[string]interface{}{
		"content": "welcome",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var bobNotifications []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", bob.ID).Find(&bobNotifications).Error)
	require.Len(t, bobNotifications, 1)
	assert.Equal(t, models.VerbReply, bobNotifications[0].Verb)

	var aliceCount int64
	db.Model(&models.Notification{}).Where("recipient_id = ?", alice.ID).Count(&aliceCount)
	assert.EqualValues(t, 1, aliceCount)
}

func TestMyComments(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "alice-post", true, time.Now())

	for _, content := range []string{"one", "two"} {
		comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: content, Status: models.CommentStatusActive}
		require.NoError(t, db.Create(comment).Error)
	}
	removed := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "gone", Status: models.CommentStatusRemoved}
	require.NoError(t, db.Create(removed).Error)

	rec, resp := doRequest(t, e, http.MethodGet, "/api/v1/comments/my-comments", bob.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := dataField(t, resp)["comments"].([]interface{})
	assert.Len(t, comments, 2)
}
