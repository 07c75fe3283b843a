package models

import "time"

// DateFormat is how habit progress days are stored and exchanged.
const DateFormat = "2006-01-02"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) AsSender() Sender {
	return Sender{ID: u.ID, FullName: u.FullName}
}

type Habit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProgressStatus string

const (
	StatusSuccess ProgressStatus = "success"
	StatusFail    ProgressStatus = "fail"
)

func (s ProgressStatus) Valid() bool {
	return s == StatusSuccess || s == StatusFail
}

// HabitProgress is one day's result for a user and habit. At most one
// exists per (user, habit, date).
type HabitProgress struct {
	ID        int64          `json:"-"`
	UserID    int64          `json:"-"`
	HabitID   int64          `json:"habit"`
	Date      string         `json:"date"`
	Status    ProgressStatus `json:"status"`
	UpdatedAt time.Time      `json:"-"`
}

type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
)

type Chat struct {
	ID        int64     `json:"id"`
	Type      ChatType  `json:"chat_type"`
	CreatedAt time.Time `json:"-"`
}

// Sender is the public identity attached to chat messages and typing events.
type Sender struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

type ChatMessage struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
