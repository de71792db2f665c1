package server

import (
	"net/http"
	"testing"

	"porchlight/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPosts_IncludesCommentCounts(t *testing.T) {
	resetTables(t)
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")
	postComment(t, bearer, map[string]interface{}{"postSlug": "on-lamps", "content": "cozy"})

	resp := doRequest(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listings []struct {
		Slug         string `json:"slug"`
		Title        string `json:"title"`
		ReadingTime  string `json:"readingTime"`
		CommentCount int64  `json:"commentCount"`
	}
	decodeBody(t, resp, &listings)

	require.Len(t, listings, 2)
	assert.Equal(t, "on-lamps", listings[0].Slug, "newest post first")
	assert.EqualValues(t, 1, listings[0].CommentCount)
	assert.Equal(t, "hello-world", listings[1].Slug)
	assert.EqualValues(t, 0, listings[1].CommentCount)
	assert.Equal(t, "1 min read", listings[0].ReadingTime)
}

func TestGetPost(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/posts/hello-world", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Post *content.Post `json:"post"`
		Prev *content.Post `json:"prev"`
		Next *content.Post `json:"next"`
	}
	decodeBody(t, resp, &body)

	require.NotNil(t, body.Post)
	assert.Equal(t, "Hello World", body.Post.Title)
	require.NotNil(t, body.Prev, "a newer post exists")
	assert.Equal(t, "on-lamps", body.Prev.Slug)
	assert.Nil(t, body.Next)
}

func TestGetPost_NotFound(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/posts/missing", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetProjects(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var projects []content.Project
	decodeBody(t, resp, &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, "night-shift", projects[0].Slug)
	assert.Equal(t, "Maintainer", projects[0].Role)
}
