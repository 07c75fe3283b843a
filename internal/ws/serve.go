package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/nevroth/nevroth/internal/logging"
)

// Server upgrades websocket requests, runs admission and wires admitted
// connections into the hub.
type Server struct {
	hub        *Hub
	admission  *Admission
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     logging.Logger
}

func NewServer(hub *Hub, admission *Admission, sendBuffer int, logger logging.Logger) *Server {
	return &Server{
		hub:       hub,
		admission: admission,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Credentials travel as bearer tokens, never cookies.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// ServeRoom handles /ws/chats/{chat_id}.
func (s *Server) ServeRoom(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	chatID, err := strconv.ParseInt(mux.Vars(r)["chat_id"], 10, 64)
	if err != nil {
		s.reject(r.Context(), conn, &AdmissionError{Code: CloseNotParticipant, Reason: "unknown chat"})
		return
	}

	user, err := s.admission.AdmitRoom(r.Context(), r, chatID)
	if err != nil {
		s.reject(r.Context(), conn, err)
		return
	}

	client := newClient(s.hub, conn, user.AsSender(), chatID, s.sendBuffer)
	if !s.attach(r.Context(), conn, RoomGroup(chatID), client) {
		return
	}
	s.logger.Info(r.Context(), "websocket admitted", "conn_id", client.id, "user_id", user.ID, "chat_id", chatID)

	go client.writePump()
	client.readPump()
}

// ServeInbox handles /ws/chat-list.
func (s *Server) ServeInbox(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	user, err := s.admission.AdmitInbox(r.Context(), r)
	if err != nil {
		s.reject(r.Context(), conn, err)
		return
	}

	client := newClient(s.hub, conn, user.AsSender(), 0, s.sendBuffer)
	if !s.attach(r.Context(), conn, InboxGroup(user.ID), client) {
		return
	}
	s.logger.Info(r.Context(), "websocket admitted", "conn_id", client.id, "user_id", user.ID, "inbox", true)

	go client.writePump()
	client.readPump()
}

// attach joins the client to group, or closes the connection with
// CloseGoingAway when the hub is already shut down.
func (s *Server) attach(ctx context.Context, conn *websocket.Conn, group string, c *Client) bool {
	if err := s.hub.Join(group, c); err != nil {
		s.reject(ctx, conn, &AdmissionError{Code: websocket.CloseGoingAway, Reason: "server shutting down"})
		return false
	}
	return true
}

func (s *Server) reject(ctx context.Context, conn *websocket.Conn, err error) {
	defer conn.Close()

	var admissionErr *AdmissionError
	if !errors.As(err, &admissionErr) {
		admissionErr = &AdmissionError{Code: websocket.CloseInternalServerErr, Reason: "internal error"}
	}
	s.logger.Info(ctx, "websocket refused", "code", admissionErr.Code, "reason", admissionErr.Reason)

	msg := websocket.FormatCloseMessage(admissionErr.Code, admissionErr.Reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		s.logger.Debug(ctx, "cannot send close frame", "error", err)
	}
}
