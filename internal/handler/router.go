package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moloudamini/chatbot/internal/handler/events"
	"github.com/moloudamini/chatbot/internal/handler/widget"
	middlewarePkg "github.com/moloudamini/chatbot/internal/middleware"
	"github.com/moloudamini/chatbot/internal/session"
)

// NewRouter wires HTTP routes to the conversation session.
func NewRouter(sess *session.Session) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	widgetHandler := widget.New(sess)
	eventsHandler := events.New(sess)

	r.Route("/api", func(api chi.Router) {
		widgetHandler.RegisterRoutes(api)
		eventsHandler.RegisterRoutes(api)
	})

	return r
}
