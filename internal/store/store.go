package store

import (
	"context"
	"time"

	"github.com/nevroth/nevroth/internal/models"
)

// Store is the persistence boundary. Lookups of a single row return
// common.ErrorNotFound when nothing matches.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Habit operations
	ListHabits(ctx context.Context) ([]models.Habit, error)
	ExistingHabitIDs(ctx context.Context, ids []int64) ([]int64, error)
	ReplaceUserHabits(ctx context.Context, userID int64, habitIDs []int64) error
	GetUserHabits(ctx context.Context, userID int64) ([]models.Habit, error)
	HasUserHabit(ctx context.Context, userID, habitID int64) (bool, error)

	// Habit progress operations
	GetHabitProgress(ctx context.Context, userID, habitID int64, date string) (*models.HabitProgress, error)
	CreateHabitProgress(ctx context.Context, p *models.HabitProgress) error
	UpdateHabitProgress(ctx context.Context, p *models.HabitProgress) error
	ListHabitProgress(ctx context.Context, userID, habitID int64) ([]models.HabitProgress, error)
	ListUserProgress(ctx context.Context, userID int64) ([]models.HabitProgress, error)

	// Chat operations
	CreateChat(ctx context.Context, chatType models.ChatType, memberIDs []int64) (*models.Chat, error)
	FindPrivateChat(ctx context.Context, userA, userB int64) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID int64) ([]models.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID int64) (bool, error)
	GetChatMemberIDs(ctx context.Context, chatID int64) ([]int64, error)

	// Message operations
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	GetMessage(ctx context.Context, id int64) (*models.ChatMessage, error)
	UpdateMessageContent(ctx context.Context, id int64, content string, updatedAt time.Time) error
	DeleteMessage(ctx context.Context, id int64) error
	GetChatMessages(ctx context.Context, chatID int64) ([]models.ChatMessage, error)
	DeleteMessagesBefore(ctx context.Context, before time.Time) (int64, error)
}
