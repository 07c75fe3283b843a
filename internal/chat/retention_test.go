package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/models"
)

func TestCleaner_Sweep(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	chat, err := f.store.CreateChat(ctx, models.ChatGroup, []int64{f.ann.ID})
	require.NoError(t, err)

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	for _, age := range []time.Duration{45 * 24 * time.Hour, 30 * 24 * time.Hour, 29 * 24 * time.Hour} {
		require.NoError(t, f.store.SaveMessage(ctx, &models.ChatMessage{
			ChatID: chat.ID, Sender: f.ann.AsSender(), Content: "m", CreatedAt: now.Add(-age),
		}))
	}

	c := NewCleaner(f.store, 30*24*time.Hour, time.Hour, logging.NewNop())
	c.now = func() time.Time { return now }

	assert.Equal(t, int64(2), c.Sweep(ctx))
	assert.Equal(t, int64(0), c.Sweep(ctx))

	left, err := f.store.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestCleaner_RunStopsOnCancel(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	c := NewCleaner(f.store, time.Hour, 10*time.Millisecond, logging.NewNop())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
}
