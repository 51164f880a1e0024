package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// UserIDKey is the gin context key holding the authenticated user uuid.
	UserIDKey = "userUUID"
	// BypassHeader names the user in development when auth is bypassed.
	BypassHeader = "X-User-Id"
)

// Authenticator resolves an access token to a user uuid.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// JWTAuthenticator validates HS256 tokens whose "sub" claim is the user uuid.
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

func (a *JWTAuthenticator) Authenticate(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// CognitoUserGetter is the part of the Cognito client used for
// authentication.
type CognitoUserGetter interface {
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
}

// CognitoAuthenticator treats the token as a Cognito access token and uses
// the Cognito username as user uuid.
type CognitoAuthenticator struct {
	client CognitoUserGetter
}

func NewCognitoAuthenticator(client CognitoUserGetter) *CognitoAuthenticator {
	return &CognitoAuthenticator{client: client}
}

// NewCognitoClient creates a client from the default aws config chain, e.g.
// ~/.aws/config or AWS_* environment variables.
func NewCognitoClient(ctx context.Context, region string) (*cognitoidentityprovider.Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "fail to load aws config")
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

func (a *CognitoAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	user, err := a.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{AccessToken: &token})
	if err != nil {
		return "", err
	}
	if user.Username == nil || *user.Username == "" {
		return "", errors.New("cognito user has no username")
	}
	return *user.Username, nil
}

// Auth fetches the token from the Authorization header ("Bearer <token>") or
// the "token" query parameter, resolves it and stores the user uuid under
// UserIDKey. Requests without a valid token are rejected with 401.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "empty jwt token")
			return
		}

		userID, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			Log.WithError(err).Debug("rejecting request with invalid token")
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// BypassAuth trusts the BypassHeader. Development only.
func BypassAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(BypassHeader)
		if userID == "" {
			abortUnauthorized(c, "missing "+BypassHeader+" header")
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user uuid, empty if there is none.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status": http.StatusUnauthorized,
		"error":  msg,
	})
}
