package ws

import "strconv"

// RoomGroup holds every connection currently viewing a chat.
func RoomGroup(chatID int64) string {
	return "room:" + strconv.FormatInt(chatID, 10)
}

// InboxGroup holds every chat-list connection of one user.
func InboxGroup(userID int64) string {
	return "inbox:" + strconv.FormatInt(userID, 10)
}
