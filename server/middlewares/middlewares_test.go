package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(auth)
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return router
}

func get(router *gin.Engine, target string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	a := NewJWTAuthenticator("secret")
	token, err := a.IssueToken("u1", time.Hour)
	require.NoError(t, err)
	router := whoami(Auth(a))

	w := get(router, "/whoami", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = get(router, "/whoami?token="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = get(router, "/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "empty jwt token")
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	a := NewJWTAuthenticator("secret")
	router := whoami(Auth(a))

	forged, err := NewJWTAuthenticator("other").IssueToken("u1", time.Hour)
	require.NoError(t, err)
	w := get(router, "/whoami", http.Header{"Authorization": {"Bearer " + forged}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := a.IssueToken("u1", -time.Minute)
	require.NoError(t, err)
	w = get(router, "/whoami", http.Header{"Authorization": {"Bearer " + expired}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = a.Authenticate(context.Background(), noSub)
	assert.Error(t, err)
}

type fakeCognito struct {
	users map[string]string
}

func (f *fakeCognito) GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error) {
	name, ok := f.users[*params.AccessToken]
	if !ok {
		return nil, errors.New("NotAuthorizedException: Invalid Access Token")
	}
	return &cognitoidentityprovider.GetUserOutput{Username: &name}, nil
}

func TestCognitoAuth(t *testing.T) {
	a := NewCognitoAuthenticator(&fakeCognito{users: map[string]string{"good": "u7"}})
	router := whoami(Auth(a))

	w := get(router, "/whoami", http.Header{"Authorization": {"Bearer good"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u7", w.Body.String())

	w = get(router, "/whoami", http.Header{"Authorization": {"Bearer bad"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Access Token")
}

func TestBypassAuth(t *testing.T) {
	router := whoami(BypassAuth())

	w := get(router, "/whoami", http.Header{BypassHeader: {"dev-user"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev-user", w.Body.String())

	w = get(router, "/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
