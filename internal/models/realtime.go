package models

import (
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	EventMessage EventType = "message"
	EventEnter   EventType = "enter"
	EventLeave   EventType = "leave"
	// EventError is only ever written to the connection that caused it.
	EventError EventType = "error"
)

// Event is a real-time notification for the subscribers of one room.
// It is implemented by MessageEvent, EnterEvent and LeaveEvent only.
type Event interface {
	Type() EventType
	Room() string
	isEvent()
}

// MessageEvent carries a message that has already been persisted.
type MessageEvent struct {
	Message ChatMessage
}

func (e MessageEvent) Type() EventType { return EventMessage }
func (e MessageEvent) Room() string    { return e.Message.RoomID }
func (MessageEvent) isEvent()          {}

// EnterEvent announces that a participant opened the room.
type EnterEvent struct {
	RoomID    string
	UserID    string
	Notice    string
	Timestamp time.Time
}

func (e EnterEvent) Type() EventType { return EventEnter }
func (e EnterEvent) Room() string    { return e.RoomID }
func (EnterEvent) isEvent()          {}

// LeaveEvent announces that a participant left the room.
type LeaveEvent struct {
	RoomID    string
	UserID    string
	Notice    string
	Timestamp time.Time
}

func (e LeaveEvent) Type() EventType { return EventLeave }
func (e LeaveEvent) Room() string    { return e.RoomID }
func (LeaveEvent) isEvent()          {}

// Envelope is the JSON shape of an event on the wire (websocket and Redis).
type Envelope struct {
	Type       EventType    `json:"type"`
	RoomID     string       `json:"room_id"`
	SenderID   string       `json:"sender_id,omitempty"`
	SenderName string       `json:"sender_name,omitempty"`
	Content    string       `json:"content,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	Message    *ChatMessage `json:"message,omitempty"`
}

// Encode flattens an event into its wire form.
func Encode(ev Event) Envelope {
	switch e := ev.(type) {
	case MessageEvent:
		msg := e.Message
		return Envelope{
			Type:       EventMessage,
			RoomID:     msg.RoomID,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Content:    msg.Content,
			Timestamp:  msg.SentAt,
			Message:    &msg,
		}
	case EnterEvent:
		return Envelope{Type: EventEnter, RoomID: e.RoomID, SenderID: e.UserID, Content: e.Notice, Timestamp: e.Timestamp}
	case LeaveEvent:
		return Envelope{Type: EventLeave, RoomID: e.RoomID, SenderID: e.UserID, Content: e.Notice, Timestamp: e.Timestamp}
	}
	panic(fmt.Sprintf("models: unknown event %T", ev))
}

var ErrUnknownEvent = errors.New("unknown event type")

// Decode turns a wire envelope back into a typed event.
func Decode(env Envelope) (Event, error) {
	switch env.Type {
	case EventMessage:
		if env.Message == nil {
			return nil, errors.New("message envelope without message")
		}
		return MessageEvent{Message: *env.Message}, nil
	case EventEnter:
		return EnterEvent{RoomID: env.RoomID, UserID: env.SenderID, Notice: env.Content, Timestamp: env.Timestamp}, nil
	case EventLeave:
		return LeaveEvent{RoomID: env.RoomID, UserID: env.SenderID, Notice: env.Content, Timestamp: env.Timestamp}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
}

// InboundFrame is what a websocket client sends.
type InboundFrame struct {
	Type      EventType `json:"type"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
