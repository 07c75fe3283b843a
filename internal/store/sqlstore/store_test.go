package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/models"
)

var testStore *SQLStore

func SetupTestDB(t *testing.T) {
	var err error
	testStore, err = New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
}

func TeardownTestDB() {
	testStore.db.Close()
}

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		FullName:  "User " + email,
		Password:  "hashed",
		CreatedAt: time.Now(),
	}
	require.NoError(t, testStore.CreateUser(context.Background(), user))
	return user
}

func TestNew_AppliesMigrations(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	habits, err := testStore.ListHabits(context.Background())
	require.NoError(t, err)
	assert.Len(t, habits, 12)
	assert.NoError(t, testStore.Ping(context.Background()))
}

func TestRunMigrations_Error(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	var versions []int64
	gooseUp = func(_ context.Context, p *goose.Provider) ([]*goose.MigrationResult, error) {
		for _, src := range p.ListSources() {
			versions = append(versions, src.Version)
		}
		return nil, errors.New("boom")
	}

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewWithDB(db, "postgres")
	err = s.RunMigrations(context.Background())
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []int64{1, 2}, versions)
}

func TestRunMigrations_UnknownDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewWithDB(db, "oracle")
	assert.EqualError(t, s.RunMigrations(context.Background()), `unsupported database driver "oracle"`)
}

// Stores of different dialects migrate side by side without sharing goose
// state, and a second run applies nothing new.
func TestRunMigrations_Independent(t *testing.T) {
	a, err := New("sqlite3", ":memory:")
	require.NoError(t, err)
	defer a.Close()

	orig := gooseUp
	defer func() { gooseUp = orig }()
	var applied int
	gooseUp = func(ctx context.Context, p *goose.Provider) ([]*goose.MigrationResult, error) {
		res, err := p.Up(ctx)
		applied += len(res)
		return res, err
	}

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	pg := NewWithDB(db, "postgres")
	assert.Error(t, pg.RunMigrations(context.Background()))

	require.NoError(t, a.RunMigrations(context.Background()))
	assert.Zero(t, applied)

	habits, err := a.ListHabits(context.Background())
	require.NoError(t, err)
	assert.Len(t, habits, 12)
}

func TestRebind(t *testing.T) {
	lite := NewWithDB(nil, "sqlite3")
	pg := NewWithDB(nil, "postgres")

	q := "SELECT 1 FROM t WHERE a = ? AND b IN (" + placeholders(3) + ")"
	assert.Equal(t, "SELECT 1 FROM t WHERE a = ? AND b IN (?, ?, ?)", lite.rebind(q))
	assert.Equal(t, "SELECT 1 FROM t WHERE a = $1 AND b IN ($2, $3, $4)", pg.rebind(q))
}

func TestDBError(t *testing.T) {
	assert.ErrorIs(t, dbError(sql.ErrNoRows), common.ErrorNotFound)

	other := errors.New("connection reset")
	err := dbError(other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGetUserByID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, email, full_name, password, created_at FROM users WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	s := NewWithDB(db, "postgres")
	_, err = s.GetUserByID(context.Background(), 7)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceUserHabits_RollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_habits").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO user_habits").WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_habits").WithArgs(int64(1), int64(3)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	s := NewWithDB(db, "postgres")
	err = s.ReplaceUserHabits(context.Background(), 1, []int64{2, 3, 4})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMessage_NotFoundViaRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM chat_messages WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewWithDB(db, "postgres")
	assert.ErrorIs(t, s.DeleteMessage(context.Background(), 99), common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
