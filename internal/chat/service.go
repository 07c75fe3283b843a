// Package chat implements chats and their messages. Creating a message is
// the trigger for realtime delivery through a Notifier.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/models"
	"github.com/nevroth/nevroth/internal/store"
)

const MaxMessageLength = 256

// Notifier pushes a freshly stored message to live connections.
// Implementations must not block on slow recipients.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, msg *models.ChatMessage, memberIDs []int64)
}

type Service struct {
	store    store.Store
	notifier Notifier
	logger   logging.Logger
	now      func() time.Time
}

func NewService(st store.Store, notifier Notifier, logger logging.Logger) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ListChats returns the user's chats, newest first.
func (s *Service) ListChats(ctx context.Context, userID int64) ([]models.Chat, error) {
	return s.store.GetUserChats(ctx, userID)
}

// GetOrCreatePrivateChat returns the private chat between the two users,
// creating it on first use.
func (s *Service) GetOrCreatePrivateChat(ctx context.Context, userID, otherID int64) (*models.Chat, error) {
	if otherID == userID {
		return nil, common.Validationf("cannot start a chat with yourself")
	}
	if _, err := s.store.GetUserByID(ctx, otherID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Validationf("user %d does not exist", otherID)
		}
		return nil, err
	}

	chat, err := s.store.FindPrivateChat(ctx, userID, otherID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	chat, err = s.store.CreateChat(ctx, models.ChatPrivate, []int64{userID, otherID})
	if err != nil {
		return nil, fmt.Errorf("error creating chat: %w", err)
	}
	s.logger.Info(ctx, "private chat created", "chat_id", chat.ID, "user_id", userID, "member", otherID)
	return chat, nil
}

// ListMessages returns the chat history, newest first, to members only.
func (s *Service) ListMessages(ctx context.Context, userID, chatID int64) ([]models.ChatMessage, error) {
	if err := s.requireMember(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.store.GetChatMessages(ctx, chatID)
}

// CreateMessage stores a message from a chat member and then notifies live
// connections. Delivery is best-effort: once the message is stored the call
// succeeds whatever happens to the fan-out.
func (s *Service) CreateMessage(ctx context.Context, userID, chatID int64, content string) (*models.ChatMessage, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, chatID, userID); err != nil {
		return nil, err
	}

	sender, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading sender: %w", err)
	}

	msg := &models.ChatMessage{
		ChatID:    chatID,
		Sender:    sender.AsSender(),
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("error saving message: %w", err)
	}

	memberIDs, err := s.store.GetChatMemberIDs(ctx, chatID)
	if err != nil {
		s.logger.Error(ctx, "skipping notification, cannot load members", "chat_id", chatID, "message_id", msg.ID, "error", err)
		return msg, nil
	}
	s.notifier.NotifyNewMessage(ctx, msg, memberIDs)

	return msg, nil
}

// UpdateMessage changes the content of a message owned by userID.
func (s *Service) UpdateMessage(ctx context.Context, userID, messageID int64, content string) (*models.ChatMessage, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	msg, err := s.ownedMessage(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}

	msg.Content = content
	msg.UpdatedAt = s.now()
	if err := s.store.UpdateMessageContent(ctx, msg.ID, msg.Content, msg.UpdatedAt); err != nil {
		return nil, fmt.Errorf("error updating message: %w", err)
	}
	return msg, nil
}

// DeleteMessage removes a message owned by userID.
func (s *Service) DeleteMessage(ctx context.Context, userID, messageID int64) error {
	msg, err := s.ownedMessage(ctx, userID, messageID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMessage(ctx, msg.ID); err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}
	return nil
}

func (s *Service) ownedMessage(ctx context.Context, userID, messageID int64) (*models.ChatMessage, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Sender.ID != userID {
		return nil, common.ErrorForbidden
	}
	return msg, nil
}

func (s *Service) requireMember(ctx context.Context, chatID, userID int64) error {
	ok, err := s.store.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return fmt.Errorf("error checking membership: %w", err)
	}
	if !ok {
		return common.ErrorForbidden
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return common.Validationf("content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return common.Validationf("content must be at most %d characters", MaxMessageLength)
	}
	return nil
}
