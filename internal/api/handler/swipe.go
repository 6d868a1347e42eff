package handler

import (
	"github.com/gin-gonic/gin"

	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/response"
)

type interestRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id" binding:"required"`
}

// actor resolves the acting user of a swipe request. from_user_id may be
// omitted but never names somebody else.
func (r interestRequest) actor(c *gin.Context) (string, error) {
	caller, err := currentUser(c)
	if err != nil {
		return "", err
	}
	if r.FromUserID != "" && r.FromUserID != caller {
		return "", apperrors.Forbidden("from_user_id must be the authenticated user")
	}
	return caller, nil
}

// RecordInterest POST /interests
func (h *Handler) RecordInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	from, err := req.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	m, err := h.Swipes.RecordInterest(c.Request.Context(), from, req.ToUserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if m == nil {
		response.Success(c, gin.H{"matched": false})
		return
	}
	response.Success(c, gin.H{"matched": true, "match": m})
}

// ToggleLike POST /likes
func (h *Handler) ToggleLike(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	from, err := req.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	liked, err := h.Swipes.ToggleLike(c.Request.Context(), from, req.ToUserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// IsLiked GET /likes/:to_user_id
func (h *Handler) IsLiked(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	liked, err := h.Swipes.IsLiked(c.Request.Context(), caller, c.Param("to_user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// HasInterest GET /interests/:to_user_id
func (h *Handler) HasInterest(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	exists, err := h.Swipes.HasInterest(c.Request.Context(), caller, c.Param("to_user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"exists": exists})
}

// SentInterests GET /interests/sent
func (h *Handler) SentInterests(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.Swipes.SentInterests(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

// ReceivedInterests GET /interests/received
func (h *Handler) ReceivedInterests(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.Swipes.ReceivedInterests(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}
