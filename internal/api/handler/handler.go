// Package handler exposes the swipe, match and chat services over HTTP and
// websockets.
package handler

import (
	"github.com/gin-gonic/gin"

	"pawpair/backend/internal/chat"
	"pawpair/backend/internal/chathub"
	"pawpair/backend/internal/match"
	"pawpair/backend/internal/storage"
	"pawpair/backend/internal/swipe"
	"pawpair/backend/pkg/apperrors"
)

const ctxUserID = "user_id"

// Handler holds the services behind the routes.
type Handler struct {
	Swipes    *swipe.Service
	Matches   *match.Registry
	Chat      *chat.Service
	Hub       *chathub.ManagerService
	Directory storage.Directory
	Auth      *Authenticator
	Client    chathub.ClientOptions
}

// NewHandler bundles the services the HTTP and websocket routes call into.
func NewHandler(swipes *swipe.Service, matches *match.Registry, chatSvc *chat.Service, hub *chathub.ManagerService, dir storage.Directory, auth *Authenticator, clientOpts chathub.ClientOptions) *Handler {
	return &Handler{
		Swipes:    swipes,
		Matches:   matches,
		Chat:      chatSvc,
		Hub:       hub,
		Directory: dir,
		Auth:      auth,
		Client:    clientOpts,
	}
}

// currentUser returns the id RequireUser stored on the request.
func currentUser(c *gin.Context) (string, error) {
	if id := c.GetString(ctxUserID); id != "" {
		return id, nil
	}
	return "", apperrors.ErrInvalidToken
}
