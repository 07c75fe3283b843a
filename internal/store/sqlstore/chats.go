package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/dbx"
	"github.com/nevroth/nevroth/internal/models"
)

// CreateChat inserts the chat and all of its members atomically.
func (s *SQLStore) CreateChat(ctx context.Context, chatType models.ChatType, memberIDs []int64) (*models.Chat, error) {
	chat := &models.Chat{Type: chatType, CreatedAt: time.Now().UTC()}

	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		query := s.rebind("INSERT INTO chats (chat_type, created_at) VALUES (?, ?) RETURNING id")
		if err := tx.QueryRowContext(ctx, query, chat.Type, chat.CreatedAt).Scan(&chat.ID); err != nil {
			return dbError(err)
		}

		insert := s.rebind("INSERT INTO chat_members (chat_id, user_id, created_at) VALUES (?, ?, ?)")
		for _, userID := range memberIDs {
			if _, err := tx.ExecContext(ctx, insert, chat.ID, userID, chat.CreatedAt); err != nil {
				return dbError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// FindPrivateChat returns the private chat shared by both users.
func (s *SQLStore) FindPrivateChat(ctx context.Context, userA, userB int64) (*models.Chat, error) {
	var chat models.Chat
	query := s.rebind(`
		SELECT c.id, c.chat_type, c.created_at
		FROM chats c
		JOIN chat_members a ON a.chat_id = c.id AND a.user_id = ?
		JOIN chat_members b ON b.chat_id = c.id AND b.user_id = ?
		WHERE c.chat_type = 'private'
		ORDER BY c.id
		LIMIT 1
	`)
	err := s.db.QueryRowContext(ctx, query, userA, userB).Scan(&chat.ID, &chat.Type, &chat.CreatedAt)
	if err != nil {
		return nil, dbError(err)
	}
	return &chat, nil
}

func (s *SQLStore) GetUserChats(ctx context.Context, userID int64) ([]models.Chat, error) {
	query := s.rebind(`
		SELECT c.id, c.chat_type, c.created_at
		FROM chats c
		JOIN chat_members cm ON c.id = cm.chat_id
		WHERE cm.user_id = ?
		ORDER BY c.created_at DESC, c.id DESC
	`)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	chats := []models.Chat{}
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.Type, &c.CreatedAt); err != nil {
			return nil, dbError(err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *SQLStore) IsParticipant(ctx context.Context, chatID, userID int64) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id = ? AND user_id = ?)")
	if err := s.db.QueryRowContext(ctx, query, chatID, userID).Scan(&exists); err != nil {
		return false, dbError(err)
	}
	return exists, nil
}

func (s *SQLStore) GetChatMemberIDs(ctx context.Context, chatID int64) ([]int64, error) {
	query := s.rebind("SELECT user_id FROM chat_members WHERE chat_id = ? ORDER BY user_id")
	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dbError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.UpdatedAt.IsZero() {
		msg.UpdatedAt = msg.CreatedAt
	}
	query := s.rebind(`
		INSERT INTO chat_messages (chat_id, sender_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.db.QueryRowContext(ctx, query, msg.ChatID, msg.Sender.ID, msg.Content, msg.CreatedAt.UTC(), msg.UpdatedAt.UTC()).
		Scan(&msg.ID)
	if err != nil {
		return dbError(err)
	}
	return nil
}

const messageColumns = `
	SELECT m.id, m.chat_id, m.sender_id, u.full_name, m.content, m.created_at, m.updated_at
	FROM chat_messages m
	JOIN users u ON m.sender_id = u.id
`

func (s *SQLStore) GetMessage(ctx context.Context, id int64) (*models.ChatMessage, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(messageColumns+"WHERE m.id = ?"), id)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, dbError(err)
	}
	return msg, nil
}

func (s *SQLStore) UpdateMessageContent(ctx context.Context, id int64, content string, updatedAt time.Time) error {
	query := s.rebind("UPDATE chat_messages SET content = ?, updated_at = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, content, updatedAt.UTC(), id)
	if err != nil {
		return dbError(err)
	}
	return expectRow(result)
}

func (s *SQLStore) DeleteMessage(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM chat_messages WHERE id = ?"), id)
	if err != nil {
		return dbError(err)
	}
	return expectRow(result)
}

// GetChatMessages returns the chat history, newest first.
func (s *SQLStore) GetChatMessages(ctx context.Context, chatID int64) ([]models.ChatMessage, error) {
	query := s.rebind(messageColumns + "WHERE m.chat_id = ? ORDER BY m.created_at DESC, m.id DESC")
	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, dbError(err)
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

// DeleteMessagesBefore removes messages created at or before the cutoff
// and reports how many went.
func (s *SQLStore) DeleteMessagesBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM chat_messages WHERE created_at <= ?"), before.UTC())
	if err != nil {
		return 0, dbError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, dbError(err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := row.Scan(&msg.ID, &msg.ChatID, &msg.Sender.ID, &msg.Sender.FullName, &msg.Content, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return dbError(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
