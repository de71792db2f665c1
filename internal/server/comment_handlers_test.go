package server

import (
	"fmt"
	"net/http"
	"testing"

	"porchlight/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postComment(t *testing.T, bearer string, body map[string]interface{}) uint {
	t.Helper()
	resp := doRequest(t, http.MethodPost, "/api/comments", bearer, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &created)
	require.NotZero(t, created.ID)
	return created.ID
}

func TestCommentLifecycle(t *testing.T) {
	resetTables(t)
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")

	rootID := postComment(t, bearer, map[string]interface{}{
		"postSlug": "hello-world",
		"content":  "First!",
	})
	replyID := postComment(t, bearer, map[string]interface{}{
		"postSlug": "hello-world",
		"content":  "Replying to myself",
		"parentId": rootID,
	})

	// The thread listing shows only the root, with its reply count bumped.
	resp := doRequest(t, http.MethodGet, "/api/comments?post=hello-world", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.Comment
	decodeBody(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, rootID, listed[0].ID)
	assert.Equal(t, "Ann", listed[0].UserName)
	assert.Equal(t, 1, listed[0].ReplyCount)

	resp = doRequest(t, http.MethodGet, fmt.Sprintf("/api/comments/%d/replies", rootID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replies []models.Comment
	decodeBody(t, resp, &replies)
	require.Len(t, replies, 1)
	assert.Equal(t, replyID, replies[0].ID)

	// Deleting the root takes the reply with it.
	resp = doRequest(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", rootID), bearer, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	var remaining int64
	require.NoError(t, testDB.Model(&models.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestCreateComment_Unauthenticated(t *testing.T) {
	resetTables(t)

	resp := doRequest(t, http.MethodPost, "/api/comments", "", map[string]interface{}{
		"content": "anonymous shout",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, models.CodeUnauthenticated, body.Code)
}

func TestCreateComment_EmptyContent(t *testing.T) {
	resetTables(t)
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")

	resp := doRequest(t, http.MethodPost, "/api/comments", bearer, map[string]interface{}{
		"content": "   ",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestDeleteComment_Foreign(t *testing.T) {
	resetTables(t)
	owner := bearerFor(t, "usr_ann", "Ann", "ann@example.com")
	intruder := bearerFor(t, "usr_bob", "Bob", "bob@example.com")

	id := postComment(t, owner, map[string]interface{}{"content": "mine"})

	resp := doRequest(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", id), intruder, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	var remaining int64
	require.NoError(t, testDB.Model(&models.Comment{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func TestDeleteComment_NotFound(t *testing.T) {
	resetTables(t)
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")

	resp := doRequest(t, http.MethodDelete, "/api/comments/9999", bearer, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDeleteComment_InvalidID(t *testing.T) {
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")

	resp := doRequest(t, http.MethodDelete, "/api/comments/abc", bearer, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetRecentComments_ExcludesReplies(t *testing.T) {
	resetTables(t)
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")

	rootID := postComment(t, bearer, map[string]interface{}{"content": "root"})
	postComment(t, bearer, map[string]interface{}{"content": "reply", "parentId": rootID})

	resp := doRequest(t, http.MethodGet, "/api/comments/recent", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recent []models.Comment
	decodeBody(t, resp, &recent)
	require.Len(t, recent, 1)
	assert.Equal(t, rootID, recent[0].ID)
}

func TestGetGlobalComments_GuestbookOnly(t *testing.T) {
	resetTables(t)
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")

	guestbookID := postComment(t, bearer, map[string]interface{}{"content": "hi from the guestbook"})
	postComment(t, bearer, map[string]interface{}{"content": "reply", "parentId": guestbookID})
	postComment(t, bearer, map[string]interface{}{"postSlug": "hello-world", "content": "scoped"})

	resp := doRequest(t, http.MethodGet, "/api/comments/global", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var guestbook []models.Comment
	decodeBody(t, resp, &guestbook)
	require.Len(t, guestbook, 1)
	assert.Equal(t, guestbookID, guestbook[0].ID)
}

func TestGetCommentCounts(t *testing.T) {
	resetTables(t)
	bearer := bearerFor(t, "usr_ann", "Ann", "ann@example.com")

	postComment(t, bearer, map[string]interface{}{"postSlug": "hello-world", "content": "a"})
	postComment(t, bearer, map[string]interface{}{"postSlug": "hello-world", "content": "b"})

	resp := doRequest(t, http.MethodGet, "/api/comments/counts?slugs=hello-world,on-lamps", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var counts map[string]int64
	decodeBody(t, resp, &counts)
	assert.EqualValues(t, 2, counts["hello-world"])
	assert.EqualValues(t, 0, counts["on-lamps"])
}

func TestGetCommentCounts_NoSlugs(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/comments/counts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var counts map[string]int64
	decodeBody(t, resp, &counts)
	assert.Empty(t, counts)
}
