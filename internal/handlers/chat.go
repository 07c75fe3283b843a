package handlers

import (
	"net/http"

	"github.com/nevroth/nevroth/internal/chat"
	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/models"
)

type ChatHandler struct {
	Chats  *chat.Service
	Logger logging.Logger
}

type CreateChatRequest struct {
	ChatType models.ChatType `json:"chat_type"`
	Member   int64           `json:"member"`
}

type MessageRequest struct {
	Chat    int64  `json:"chat"`
	Content string `json:"content"`
}

func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	chats, err := h.Chats.ListChats(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, chats)
}

// CreateChat returns the private chat with another user, creating it if
// needed.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	var req CreateChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	if req.ChatType != models.ChatPrivate {
		respondError(w, r, h.Logger, common.Validationf("chat type must be %q", models.ChatPrivate))
		return
	}

	c, err := h.Chats.GetOrCreatePrivateChat(r.Context(), userID, req.Member)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	messages, err := h.Chats.ListMessages(r.Context(), userID, chatID)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	var req MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	if req.Chat == 0 {
		respondError(w, r, h.Logger, common.Validationf("chat ID is required"))
		return
	}

	msg, err := h.Chats.CreateMessage(r.Context(), userID, req.Chat, req.Content)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	var req MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	msg, err := h.Chats.UpdateMessage(r.Context(), userID, messageID, req.Content)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	if err := h.Chats.DeleteMessage(r.Context(), userID, messageID); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
