package handler

import (
	"github.com/gin-gonic/gin"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/response"
)

// ListMatches GET /matches?status=
func (h *Handler) ListMatches(c *gin.Context) {
	var status *models.MatchStatus
	if s := c.Query("status"); s != "" {
		ms := models.MatchStatus(s)
		status = &ms
	}
	h.listMatches(c, status)
}

// ListActiveMatches GET /matches/active
func (h *Handler) ListActiveMatches(c *gin.Context) {
	active := models.MatchActive
	h.listMatches(c, &active)
}

func (h *Handler) listMatches(c *gin.Context, status *models.MatchStatus) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.Matches.ListForUser(c.Request.Context(), caller, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

type statusRequest struct {
	Status models.MatchStatus `json:"status" binding:"required"`
}

// UpdateMatchStatus PUT /matches/:match_id/status
func (h *Handler) UpdateMatchStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	m, err := h.Matches.UpdateStatusFor(c.Request.Context(), c.Param("match_id"), caller, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}
