package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Luismorlan/coursehub/aggregation"
	"github.com/Luismorlan/coursehub/events"
	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/relation"
	"github.com/Luismorlan/coursehub/server/middlewares"
	"github.com/Luismorlan/coursehub/service"
	"github.com/Luismorlan/coursehub/store/storetest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nopPublisher struct{}

func (nopPublisher) PublishUserDeleted(ctx context.Context, evt events.UserDeleted) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	s := storetest.NewStore(t)
	engine := relation.NewEngine(s, relation.WithRetryPolicy(relation.RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}))
	svc := service.New(s, engine, aggregation.NewBuilder(s), nopPublisher{})

	router := gin.New()
	NewHandlers(svc).Register(router, middlewares.BypassAuth())
	return router
}

func do(router *gin.Engine, method string, target string, userID string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middlewares.BypassHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createCourse(t *testing.T, router *gin.Engine, userID string) string {
	t.Helper()
	w := do(router, http.MethodPost, "/course", userID, gin.H{
		"name":        "Test Course",
		"term":        "Fall 2020",
		"description": "wow a description",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["uuid"].(string)
}

func TestPing(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])
}

func TestProtected(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/protected", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/protected", "gary-uuid", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Authenticated access to protected!", w.Body.String())
}

func TestAddAndGetUser(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/user", "gary-uuid", gin.H{
		"name":  "gary",
		"email": "g1@ucsd.edu",
		"uuid":  "gary-uuid",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added user gary-uuid", w.Body.String())

	w = do(router, http.MethodGet, "/user", "gary-uuid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "gary", body["name"])
	assert.Equal(t, []interface{}{}, body["studentCourseList"])
}

func TestAddUserMissingField(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/user", "gary-uuid", gin.H{"name": "gary", "uuid": "gary-uuid"})
	assert.Equal(t, StatusValidation, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(StatusValidation), body["status"])
	assert.Contains(t, body["error"], "email")
}

func TestGetMissingUserIsGone(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/user?userUUID=ghost", "gary-uuid", nil)
	assert.Equal(t, StatusFailure, w.Code)
	assert.Equal(t, float64(StatusFailure), decode(t, w)["status"])
}

func TestEnrollmentFlow(t *testing.T) {
	router := newTestRouter(t)
	for _, u := range []string{"gary-uuid", "ana"} {
		w := do(router, http.MethodPost, "/user", u, gin.H{"name": u, "email": u + "@ucsd.edu", "uuid": u})
		require.Equal(t, http.StatusOK, w.Code)
	}
	courseID := createCourse(t, router, "gary-uuid")

	w := do(router, http.MethodGet, "/user/course/"+courseID+"/type", "ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User not in this class", decode(t, w)["error"])

	w = do(router, http.MethodPost, "/user/course/"+courseID, "ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added user as student to course "+courseID, w.Body.String())

	w = do(router, http.MethodGet, "/user/course/"+courseID+"/type", "ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.RoleStudent), decode(t, w)["type"])

	w = do(router, http.MethodGet, "/user/course/"+courseID+"/type", "gary-uuid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.RoleInstructor), decode(t, w)["type"])

	w = do(router, http.MethodGet, "/user?userUUID=ana", "gary-uuid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	filled := decode(t, w)["filledInStudentCourseList"].([]interface{})
	require.Len(t, filled, 1)
	assert.Equal(t, "Test Course", filled[0].(map[string]interface{})["name"])
}

func TestAddInstructorForAnotherUser(t *testing.T) {
	router := newTestRouter(t)
	for _, u := range []string{"gary-uuid", "ta"} {
		w := do(router, http.MethodPost, "/user", u, gin.H{"name": u, "email": u + "@ucsd.edu", "uuid": u})
		require.Equal(t, http.StatusOK, w.Code)
	}
	courseID := createCourse(t, router, "gary-uuid")

	w := do(router, http.MethodPost, "/user/course/"+courseID, "gary-uuid", gin.H{"userId": "ta", "type": "instructor"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added user as instructor to course "+courseID, w.Body.String())

	w = do(router, http.MethodGet, "/user/course/"+courseID+"/type", "ta", nil)
	assert.Equal(t, string(model.RoleInstructor), decode(t, w)["type"])
}

func TestAddUserToCourseChunkedBody(t *testing.T) {
	router := newTestRouter(t)
	for _, u := range []string{"gary-uuid", "ta"} {
		w := do(router, http.MethodPost, "/user", u, gin.H{"name": u, "email": u + "@ucsd.edu", "uuid": u})
		require.Equal(t, http.StatusOK, w.Code)
	}
	courseID := createCourse(t, router, "gary-uuid")

	payload, err := json.Marshal(gin.H{"userId": "ta", "type": "instructor"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/user/course/"+courseID, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middlewares.BypassHeader, "gary-uuid")
	// Length unknown, as with chunked transfer encoding.
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added user as instructor to course "+courseID, w.Body.String())

	w = do(router, http.MethodGet, "/user/course/"+courseID+"/type", "ta", nil)
	assert.Equal(t, string(model.RoleInstructor), decode(t, w)["type"])

	w = do(router, http.MethodGet, "/user", "gary-uuid", nil)
	assert.Equal(t, []interface{}{}, decode(t, w)["studentCourseList"])
}

func TestAddUserToCourseMalformedBody(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodPost, "/user", "gary-uuid", gin.H{"name": "gary", "email": "g1@ucsd.edu", "uuid": "gary-uuid"})
	require.Equal(t, http.StatusOK, w.Code)
	courseID := createCourse(t, router, "gary-uuid")

	req := httptest.NewRequest(http.MethodPost, "/user/course/"+courseID, bytes.NewReader([]byte("{not json")))
	req.Header.Set(middlewares.BypassHeader, "gary-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, StatusValidation, w.Code)
}

func TestAddUserToMissingCourse(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodPost, "/user", "gary-uuid", gin.H{"name": "gary", "email": "g1@ucsd.edu", "uuid": "gary-uuid"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/user/course/ghost", "gary-uuid", nil)
	assert.Equal(t, StatusFailure, w.Code)
}

func TestUpdateUser(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodPost, "/user", "gary-uuid", gin.H{"name": "gary", "email": "g1@ucsd.edu", "uuid": "gary-uuid"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPut, "/user", "gary-uuid", gin.H{"name": "gary b", "icon": "cat.png"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Updated user.", w.Body.String())

	w = do(router, http.MethodGet, "/user", "gary-uuid", nil)
	body := decode(t, w)
	assert.Equal(t, "gary b", body["name"])
	assert.Equal(t, "cat.png", body["icon"])
}

func TestDeleteUser(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodPost, "/user", "gary-uuid", gin.H{"name": "gary", "email": "g1@ucsd.edu", "uuid": "gary-uuid"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodDelete, "/user", "gary-uuid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "removed user with the following userUUID:gary-uuid", w.Body.String())

	w = do(router, http.MethodGet, "/user", "gary-uuid", nil)
	assert.Equal(t, StatusFailure, w.Code)
}

func TestPostAndComment(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodPost, "/user", "gary-uuid", gin.H{"name": "gary", "email": "g1@ucsd.edu", "uuid": "gary-uuid"})
	require.Equal(t, http.StatusOK, w.Code)
	courseID := createCourse(t, router, "gary-uuid")

	w = do(router, http.MethodPost, "/post", "gary-uuid", gin.H{
		"courseId": courseID,
		"title":    "i need help",
		"content":  "my code is broken",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	postID := decode(t, w)["uuid"].(string)

	w = do(router, http.MethodPost, "/post/"+postID+"/comment", "gary-uuid", gin.H{"content": "try turning it off"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	commentID := decode(t, w)["uuid"].(string)

	w = do(router, http.MethodGet, "/user", "gary-uuid", nil)
	body := decode(t, w)
	assert.Equal(t, []interface{}{postID}, body["postList"])
	assert.Equal(t, []interface{}{commentID}, body["commentList"])

	w = do(router, http.MethodDelete, "/comment/"+commentID, "gary-uuid", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(router, http.MethodDelete, "/post/"+postID, "gary-uuid", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/user", "gary-uuid", nil)
	body = decode(t, w)
	assert.Equal(t, []interface{}{}, body["postList"])
	assert.Equal(t, []interface{}{}, body["commentList"])

	w = do(router, http.MethodDelete, "/post/"+postID, "gary-uuid", nil)
	assert.Equal(t, StatusFailure, w.Code)
}

func TestDeletePostRequiresAuthor(t *testing.T) {
	router := newTestRouter(t)
	for _, u := range []string{"gary-uuid", "ana"} {
		w := do(router, http.MethodPost, "/user", u, gin.H{"name": u, "email": u + "@ucsd.edu", "uuid": u})
		require.Equal(t, http.StatusOK, w.Code)
	}
	courseID := createCourse(t, router, "gary-uuid")
	w := do(router, http.MethodPost, "/post", "gary-uuid", gin.H{"courseId": courseID, "title": "hw1", "content": "due friday"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	postID := decode(t, w)["uuid"].(string)

	w = do(router, http.MethodDelete, "/post/"+postID, "ana", nil)
	assert.Equal(t, StatusValidation, w.Code)
}

func TestDeleteCourseRequiresInstructor(t *testing.T) {
	router := newTestRouter(t)
	for _, u := range []string{"gary-uuid", "ana"} {
		w := do(router, http.MethodPost, "/user", u, gin.H{"name": u, "email": u + "@ucsd.edu", "uuid": u})
		require.Equal(t, http.StatusOK, w.Code)
	}
	courseID := createCourse(t, router, "gary-uuid")

	w := do(router, http.MethodDelete, "/course/"+courseID, "ana", nil)
	assert.Equal(t, StatusValidation, w.Code)

	w = do(router, http.MethodDelete, "/course/"+courseID, "gary-uuid", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/course/"+courseID, "gary-uuid", nil)
	assert.Equal(t, StatusFailure, w.Code)
}
