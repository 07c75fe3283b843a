package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nevroth/nevroth/internal/chat"
	"github.com/nevroth/nevroth/internal/habits"
	"github.com/nevroth/nevroth/internal/handlers"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/middleware"
	"github.com/nevroth/nevroth/internal/store"
	"github.com/nevroth/nevroth/internal/ws"
)

type RouterDeps struct {
	Store     store.Store
	Habits    *habits.Service
	Chats     *chat.Service
	WS        *ws.Server
	SecretKey []byte
	TokenTTL  time.Duration
	Logger    logging.Logger
}

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(d RouterDeps) *mux.Router {
	authHandler := &handlers.AuthHandler{Store: d.Store, SecretKey: d.SecretKey, TokenTTL: d.TokenTTL, Logger: d.Logger}
	habitHandler := &handlers.HabitHandler{Habits: d.Habits, Logger: d.Logger}
	chatHandler := &handlers.ChatHandler{Chats: d.Chats, Logger: d.Logger}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(d.Logger.With("module", "http")))

	r.HandleFunc("/healthz", healthz(d.Store)).Methods("GET")

	// Public endpoints
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// WebSocket endpoints run their own admission and report failures
	// with close codes.
	r.HandleFunc("/ws/chats/{chat_id}", d.WS.ServeRoom).Methods("GET")
	r.HandleFunc("/ws/chat-list", d.WS.ServeInbox).Methods("GET")

	api := r.NewRoute().Subrouter()
	api.Use(middleware.AuthMiddleware(d.SecretKey))

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

	return r
}

func healthz(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := st.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	}
}
