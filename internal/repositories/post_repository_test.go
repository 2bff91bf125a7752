package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mirasocial/mira/backend/internal/models"
)

func TestPostVisibilityInQuery(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)

	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")

	published := createTestPost(t, db, author.ID, "published", true)
	draft := createTestPost(t, db, author.ID, "draft", false)

	// Another user only sees the published post
	posts, total, err := repo.ListVisiblePosts(viewer.ID, PostListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, published.ID, posts[0].ID)

	// The author sees both
	_, total, err = repo.ListVisiblePosts(author.ID, PostListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// Unpublished reads like a missing post for non-authors
	_, err = repo.GetVisiblePostByID(draft.ID, viewer.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetVisiblePostByID(draft.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
}

func TestPostListFiltersAndOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	base := time.Now().Add(-time.Hour)
	for i, row := range []struct {
		author uint
		title  string
	}{
		{alice.ID, "go generics"},
		{alice.ID, "sqlite tricks"},
		{bob.ID, "go modules"},
	} {
		post := &models.Post{
			AuthorID:    row.author,
			Title:       row.title,
			Content:     "body",
			IsPublished: true,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(post).Error)
	}

	posts, total, err := repo.ListVisiblePosts(alice.ID, PostListOptions{AuthorID: alice.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, posts, 2)

	posts, _, err = repo.ListVisiblePosts(alice.ID, PostListOptions{Search: "go", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Default ordering is newest first
	posts, _, err = repo.ListVisiblePosts(alice.ID, PostListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "go modules", posts[0].Title)

	posts, _, err = repo.ListVisiblePosts(alice.ID, PostListOptions{Ordering: "created_at", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "go generics", posts[0].Title)

	posts, _, err = repo.ListVisiblePosts(alice.ID, PostListOptions{Ordering: "title", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "go generics", posts[0].Title)
}

func TestGetFeedFiltersAndOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)

	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	dave := createTestUser(t, db, "dave")

	base := time.Now().Add(-time.Hour)
	mk := func(author uint, title string, published bool, offset time.Duration) {
		post := &models.Post{
			AuthorID:    author,
			Title:       title,
			Content:     "body",
			IsPublished: published,
			CreatedAt:   base.Add(offset),
		}
		require.NoError(t, db.Create(post).Error)
	}

	mk(bob.ID, "bob-1", true, 1*time.Minute)
	mk(bob.ID, "bob-2", true, 3*time.Minute)
	mk(bob.ID, "bob-draft", false, 4*time.Minute)
	mk(carol.ID, "carol-1", true, 2*time.Minute)
	mk(dave.ID, "dave-1", true, 5*time.Minute)

	posts, total, err := repo.GetFeed([]uint{bob.ID, carol.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, posts, 3)

	// Newest first; bob's draft and dave's post excluded
	assert.Equal(t, "bob-2", posts[0].Title)
	assert.Equal(t, "carol-1", posts[1].Title)
	assert.Equal(t, "bob-1", posts[2].Title)
}

func TestGetFeedEmptyFollowing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)

	posts, total, err := repo.GetFeed(nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, posts)
}
