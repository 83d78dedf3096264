package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/w-h-a/ragchat/internal/handler/chat"
	"github.com/w-h-a/ragchat/internal/handler/ui"
)

func NewRouter(chatHandler *chat.Handler, uiHandler *ui.Handler) *mux.Router {
	router := mux.NewRouter()

	// API routes live on the root router so a wrong method answers 405.
	router.HandleFunc("/api/chat", chatHandler.Chat).Methods(http.MethodPost)
	router.HandleFunc("/api/chat-debug", chatHandler.Debug).Methods(http.MethodPost)

	router.HandleFunc("/healthz", Health).Methods(http.MethodGet)

	router.PathPrefix("/static/").Handler(uiHandler.Static()).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/debug", uiHandler.Debug).Methods(http.MethodGet)
	router.HandleFunc("/", uiHandler.Index).Methods(http.MethodGet)

	return router
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
