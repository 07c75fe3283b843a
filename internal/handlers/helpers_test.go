package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/nevroth/nevroth/internal/auth"
	"github.com/nevroth/nevroth/internal/chat"
	"github.com/nevroth/nevroth/internal/habits"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/middleware"
	"github.com/nevroth/nevroth/internal/models"
	"github.com/nevroth/nevroth/internal/store/sqlstore"
	"github.com/nevroth/nevroth/internal/ws"
)

var testSecret = []byte("handlers-test-secret")

type testEnv struct {
	store  *sqlstore.SQLStore
	router *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	logger := logging.NewNop()
	authHandler := &AuthHandler{Store: store, SecretKey: testSecret, TokenTTL: time.Hour, Logger: logger}
	habitHandler := &HabitHandler{
		Habits: habits.NewService(store, habits.Options{RequiredHabits: 3, EditWindow: 5 * time.Minute}, logger),
		Logger: logger,
	}
	chatHandler := &ChatHandler{Chats: chat.NewService(store, ws.NewHub(logger), logger), Logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(middleware.AuthMiddleware(testSecret))
	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/habits", habitHandler.ListHabits).Methods("GET")
	api.HandleFunc("/habits/select", habitHandler.SelectHabits).Methods("POST")
	api.HandleFunc("/habits/mine", habitHandler.MyHabits).Methods("GET")
	api.HandleFunc("/habits/progress", habitHandler.ListProgress).Methods("GET")
	api.HandleFunc("/habits/progress", habitHandler.RecordProgress).Methods("POST")
	api.HandleFunc("/habits/{habit_id}/streaks", habitHandler.Streaks).Methods("GET")
	api.HandleFunc("/chats", chatHandler.GetChats).Methods("GET")
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats/{id}/messages", chatHandler.GetChatMessages).Methods("GET")
	api.HandleFunc("/messages", chatHandler.CreateMessage).Methods("POST")
	api.HandleFunc("/messages/{id}", chatHandler.UpdateMessage).Methods("PATCH")
	api.HandleFunc("/messages/{id}", chatHandler.DeleteMessage).Methods("DELETE")

	return &testEnv{store: store, router: r}
}

func (e *testEnv) createUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Email: email, FullName: "User " + email, Password: hashed, CreatedAt: time.Now()}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

// do sends a request as userID (zero for anonymous) and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if userID != 0 {
		tok, err := auth.GenerateToken(userID, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
