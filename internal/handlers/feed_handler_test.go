package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedShowsFollowedAuthorsOnly(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	dave := seedUser(t, db, "dave")

	base := time.Now().Add(-time.Hour)
	seedPost(t, db, bob.ID, "bob-old", true, base.Add(1*time.Minute))
	seedPost(t, db, bob.ID, "bob-new", true, base.Add(30*time.Minute))
	seedPost(t, db, bob.ID, "bob-draft", false, base.Add(40*time.Minute))
	seedPost(t, db, carol.ID, "carol-post", true, base.Add(20*time.Minute))
	seedPost(t, db, dave.ID, "dave-post", true, base.Add(50*time.Minute))

	for _, target := range []uint{bob.ID, carol.ID} {
		rec, _ := doRequest(t, e, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", target), alice.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := doRequest(t, e, http.MethodGet, "/api/v1/posts/feed", alice.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.EqualValues(t, 2, resp["following_count"])

	posts, ok := dataField(t, resp)["posts"].([]interface{})
	require.True(t, ok)
	require.Len(t, posts, 3, "bob's draft and dave's post must be excluded")

	titles := make([]string, len(posts))
	for i, p := range posts {
		titles[i] = p.(map[string]interface{})["title"].(string)
	}
	assert.Equal(t, []string{"bob-new", "carol-post", "bob-old"}, titles)

	// Feed entries carry the author
	first := posts[0].(map[string]interface{})
	author := first["author"].(map[string]interface{})
	assert.Equal(t, "bob", author["username"])
}

func TestFeedWhenFollowingNobody(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedPost(t, db, bob.ID, "bob-post", true, time.Now())

	rec, resp := doRequest(t, e, http.MethodGet, "/api/v1/posts/feed", alice.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Not just an empty list: a distinct guidance payload
	assert.EqualValues(t, 0, resp["following_count"])
	assert.Contains(t, resp["message"], "not following anyone yet")
	posts, ok := dataField(t, resp)["posts"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, posts)
}

func TestFeedPagination(t *testing.T) {
	e, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedPost(t, db, bob.ID, fmt.Sprintf("post-%d", i), true, base.Add(time.Duration(i)*time.Minute))
	}

	rec, _ := doRequest(t, e, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", bob.ID), alice.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doRequest(t, e, http.MethodGet, "/api/v1/posts/feed?page=2&limit=2", alice.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	posts := dataField(t, resp)["posts"].([]interface{})
	require.Len(t, posts, 2)
	assert.Equal(t, "post-2", posts[0].(map[string]interface{})["title"])

	meta := resp["meta"].(map[string]interface{})
	assert.EqualValues(t, 5, meta["totalItems"])
	assert.EqualValues(t, 3, meta["totalPages"])
}

func TestFeedRequiresAuthentication(t *testing.T) {
	e, _ := newTestServer(t)

	rec, _ := doRequest(t, e, http.MethodGet, "/api/v1/posts/feed", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
