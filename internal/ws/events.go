package ws

import (
	"encoding/json"

	"github.com/nevroth/nevroth/internal/models"
)

// ClientEventType tags frames sent by clients.
type ClientEventType string

const (
	EventTyping     ClientEventType = "typing"
	EventStopTyping ClientEventType = "stop_typing"
)

type ClientEvent struct {
	Type ClientEventType `json:"type"`
}

// ServerEventType tags frames sent to clients.
type ServerEventType string

const (
	EventNewMessage     ServerEventType = "new_message"
	EventUserTyping     ServerEventType = "user_typing"
	EventUserStopTyping ServerEventType = "user_stop_typing"
)

// ServerEvent is implemented only by the event types of this package.
type ServerEvent interface {
	frame() any
}

// NewMessageEvent carries a full message to the chat room.
type NewMessageEvent struct {
	Message *models.ChatMessage
}

// InboxMessageEvent tells a member's chat list that a chat has a new message.
type InboxMessageEvent struct {
	Message *models.ChatMessage
}

// TypingEvent signals that a user started or stopped typing in a room.
type TypingEvent struct {
	User    models.Sender
	Stopped bool
}

type messageFrame struct {
	Type    ServerEventType `json:"type"`
	Message any             `json:"message"`
}

type roomMessage struct {
	ID      int64         `json:"id"`
	Content string        `json:"content"`
	Sender  models.Sender `json:"sender"`
}

type inboxMessage struct {
	ID      int64         `json:"id"`
	Chat    int64         `json:"chat"`
	Content string        `json:"content"`
	Sender  models.Sender `json:"sender"`
}

type typingFrame struct {
	Type ServerEventType `json:"type"`
	User models.Sender   `json:"user"`
}

func (e NewMessageEvent) frame() any {
	return messageFrame{
		Type: EventNewMessage,
		Message: roomMessage{
			ID:      e.Message.ID,
			Content: e.Message.Content,
			Sender:  e.Message.Sender,
		},
	}
}

func (e InboxMessageEvent) frame() any {
	return messageFrame{
		Type: EventNewMessage,
		Message: inboxMessage{
			ID:      e.Message.ID,
			Chat:    e.Message.ChatID,
			Content: e.Message.Content,
			Sender:  e.Message.Sender,
		},
	}
}

func (e TypingEvent) frame() any {
	t := EventUserTyping
	if e.Stopped {
		t = EventUserStopTyping
	}
	return typingFrame{Type: t, User: e.User}
}

func encodeEvent(e ServerEvent) ([]byte, error) {
	return json.Marshal(e.frame())
}
