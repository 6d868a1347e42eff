package handler

import (
	"github.com/gin-gonic/gin"

	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/response"
)

// OpenRoom POST /chat/rooms/match/:match_id
func (h *Handler) OpenRoom(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.Chat.GetOrCreateRoomFor(c.Request.Context(), c.Param("match_id"), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, room)
}

// RoomByMatch GET /chat/rooms/match/:match_id
func (h *Handler) RoomByMatch(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.Chat.FindByMatchFor(c.Request.Context(), c.Param("match_id"), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	if room == nil {
		response.Error(c, apperrors.ErrRoomNotFound)
		return
	}
	response.Success(c, room)
}

// ListRooms GET /chat/rooms
func (h *Handler) ListRooms(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rooms, err := h.Chat.ListRoomsForUser(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": rooms})
}

// History GET /chat/rooms/:room_id/history
func (h *Handler) History(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	history, err := h.Chat.GetHistory(c.Request.Context(), c.Param("room_id"), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": history})
}

// UnreadCount GET /chat/rooms/:room_id/unread-count
func (h *Handler) UnreadCount(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.Chat.UnreadCount(c.Request.Context(), c.Param("room_id"), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"unread": n})
}

// MarkRead PUT /chat/rooms/:room_id/read
func (h *Handler) MarkRead(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.Chat.MarkRead(c.Request.Context(), c.Param("room_id"), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"marked": n})
}

// LastMessage GET /chat/rooms/:room_id/last-message
func (h *Handler) LastMessage(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg, err := h.Chat.LastMessage(c.Request.Context(), c.Param("room_id"), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	if msg == nil {
		response.NoContent(c)
		return
	}
	response.Success(c, msg)
}
