package ws

import (
	"context"

	"github.com/nevroth/nevroth/internal/models"
)

// NotifyNewMessage fans a stored message out to the chat room and then to
// the chat list of every member other than the sender. Delivery is
// best-effort and never reports failure to the caller.
func (h *Hub) NotifyNewMessage(ctx context.Context, msg *models.ChatMessage, memberIDs []int64) {
	h.Publish(RoomGroup(msg.ChatID), NewMessageEvent{Message: msg})

	frame, err := encodeEvent(InboxMessageEvent{Message: msg})
	if err != nil {
		h.logger.Error(ctx, "cannot encode inbox event", "message_id", msg.ID, "error", err)
		return
	}
	for _, memberID := range memberIDs {
		if memberID == msg.Sender.ID {
			continue
		}
		h.publishFrame(InboxGroup(memberID), frame, 0)
	}
}
