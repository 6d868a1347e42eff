package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/response"
)

const issuer = "pawpair-backend"

// Authenticator issues and verifies HS256 bearer tokens whose subject is
// the user id.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator signs HS256 tokens with secret that expire after ttl.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID.
func (a *Authenticator) Issue(userID string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify returns the user id carried by a valid token.
func (a *Authenticator) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", apperrors.ErrInvalidToken
	}
	return claims.Subject, nil
}

// RequireUser authenticates the request from the Authorization header, or
// the token query parameter for browsers opening a websocket.
func (h *Handler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			response.Error(c, apperrors.Unauthorized("authorization token missing"))
			return
		}

		userID, err := h.Auth.Verify(tokenString)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type tokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// IssueToken hands out a development token for an existing user.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.Directory.ResolveUser(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			response.Error(c, apperrors.Unauthorized("unknown user"))
			return
		}
		response.Error(c, err)
		return
	}

	token, err := h.Auth.Issue(user.ID)
	if err != nil {
		response.Error(c, apperrors.Wrap(apperrors.CodeInternal, "failed to create token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}
