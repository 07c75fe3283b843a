package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/models"
)

func TestCreateChat(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	bob := createTestUser(t, "bob@example.com")

	chat, err := testStore.CreateChat(ctx, models.ChatPrivate, []int64{ann.ID, bob.ID})
	if err != nil {
		t.Fatalf("Failed to create chat: %v", err)
	}
	if chat.ID == 0 {
		t.Error("Expected non-zero chat ID")
	}

	members, err := testStore.GetChatMemberIDs(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ann.ID, bob.ID}, members)

	ok, err := testStore.IsParticipant(ctx, chat.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateChat_DuplicateMemberRollsBack(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")

	_, err := testStore.CreateChat(ctx, models.ChatGroup, []int64{ann.ID, ann.ID})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	chats, err := testStore.GetUserChats(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestIsParticipant_NotMember(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	bob := createTestUser(t, "bob@example.com")
	eve := createTestUser(t, "eve@example.com")
	chat, err := testStore.CreateChat(ctx, models.ChatPrivate, []int64{ann.ID, bob.ID})
	require.NoError(t, err)

	ok, err := testStore.IsParticipant(ctx, chat.ID, eve.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = testStore.IsParticipant(ctx, chat.ID+1, ann.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindPrivateChat(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	bob := createTestUser(t, "bob@example.com")
	eve := createTestUser(t, "eve@example.com")

	_, err := testStore.CreateChat(ctx, models.ChatGroup, []int64{ann.ID, bob.ID, eve.ID})
	require.NoError(t, err)

	_, err = testStore.FindPrivateChat(ctx, ann.ID, bob.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	chat, err := testStore.CreateChat(ctx, models.ChatPrivate, []int64{ann.ID, bob.ID})
	require.NoError(t, err)

	found, err := testStore.FindPrivateChat(ctx, bob.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID)
	assert.Equal(t, models.ChatPrivate, found.Type)
}

func TestGetUserChats(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	bob := createTestUser(t, "bob@example.com")

	first, err := testStore.CreateChat(ctx, models.ChatPrivate, []int64{ann.ID, bob.ID})
	require.NoError(t, err)
	second, err := testStore.CreateChat(ctx, models.ChatGroup, []int64{ann.ID})
	require.NoError(t, err)

	chats, err := testStore.GetUserChats(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, second.ID, chats[0].ID)
	assert.Equal(t, first.ID, chats[1].ID)

	chats, err = testStore.GetUserChats(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestSaveMessage(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	chat, err := testStore.CreateChat(ctx, models.ChatGroup, []int64{ann.ID})
	require.NoError(t, err)

	msg := &models.ChatMessage{ChatID: chat.ID, Sender: models.Sender{ID: ann.ID}, Content: "hi", CreatedAt: time.Now()}
	if err := testStore.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("Failed to save message: %v", err)
	}
	assert.NotZero(t, msg.ID)

	got, err := testStore.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)
	assert.Equal(t, ann.FullName, got.Sender.FullName)
	assert.Equal(t, chat.ID, got.ChatID)

	_, err = testStore.GetMessage(ctx, msg.ID+1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetChatMessages_NewestFirst(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	chat, err := testStore.CreateChat(ctx, models.ChatGroup, []int64{ann.ID})
	require.NoError(t, err)

	base := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	for i, content := range []string{"one", "two", "three"} {
		require.NoError(t, testStore.SaveMessage(ctx, &models.ChatMessage{
			ChatID: chat.ID, Sender: models.Sender{ID: ann.ID}, Content: content, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	messages, err := testStore.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "three", messages[0].Content)
	assert.Equal(t, "one", messages[2].Content)
}

func TestUpdateAndDeleteMessage(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	chat, err := testStore.CreateChat(ctx, models.ChatGroup, []int64{ann.ID})
	require.NoError(t, err)
	msg := &models.ChatMessage{ChatID: chat.ID, Sender: models.Sender{ID: ann.ID}, Content: "draft", CreatedAt: time.Now()}
	require.NoError(t, testStore.SaveMessage(ctx, msg))

	require.NoError(t, testStore.UpdateMessageContent(ctx, msg.ID, "final", time.Now()))
	got, err := testStore.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Content)

	require.NoError(t, testStore.DeleteMessage(ctx, msg.ID))
	assert.ErrorIs(t, testStore.DeleteMessage(ctx, msg.ID), common.ErrorNotFound)
	assert.ErrorIs(t, testStore.UpdateMessageContent(ctx, msg.ID, "x", time.Now()), common.ErrorNotFound)
}

func TestDeleteMessagesBefore(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	ann := createTestUser(t, "ann@example.com")
	chat, err := testStore.CreateChat(ctx, models.ChatGroup, []int64{ann.ID})
	require.NoError(t, err)

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, time.Hour} {
		require.NoError(t, testStore.SaveMessage(ctx, &models.ChatMessage{
			ChatID: chat.ID, Sender: models.Sender{ID: ann.ID}, Content: "m", CreatedAt: now.Add(-age),
		}))
	}

	n, err := testStore.DeleteMessagesBefore(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := testStore.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
