package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
)

// ContextKeySession is the key for the caller's model.Session in the Gin context
const ContextKeySession = "session"

// TokenVerifier checks an ID token. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// NewFirebaseVerifier creates a Firebase auth client for the given project
func NewFirebaseVerifier(ctx context.Context, projectID string) (*auth.Client, error) {
	var app *firebase.App
	var err error

	if projectID != "" {
		conf := &firebase.Config{ProjectID: projectID}
		app, err = firebase.NewApp(ctx, conf)
	} else {
		// Falls back to GOOGLE_APPLICATION_CREDENTIALS or default credentials
		app, err = firebase.NewApp(ctx, nil, option.WithoutAuthentication())
	}
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth: %w", err)
	}
	return client, nil
}

// AuthMiddleware validates ID tokens and places a Session in the context
type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate is the Gin middleware handler
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing Authorization header")
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "invalid Authorization header format")
			return
		}
		raw := strings.TrimSpace(parts[1])

		token, err := am.verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to verify Firebase token")
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		sess := model.Session{UserID: token.UID, Token: raw}
		if email, ok := token.Claims["email"].(string); ok {
			sess.Email = email
		}
		c.Set(ContextKeySession, sess)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, details string) {
	err := apperror.NewUnauthorized(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperror.ToJSON(err))
}

// GetSession extracts the caller's Session from the Gin context
func GetSession(c *gin.Context) (model.Session, bool) {
	v, exists := c.Get(ContextKeySession)
	if !exists {
		return model.Session{}, false
	}
	sess, ok := v.(model.Session)
	return sess, ok && sess.UserID != ""
}
