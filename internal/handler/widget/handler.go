// Package widget exposes the conversation session over HTTP for the
// embedded chat widget.
package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moloudamini/chatbot/internal/export"
	"github.com/moloudamini/chatbot/internal/model/chat"
	"github.com/moloudamini/chatbot/internal/session"
	"github.com/moloudamini/chatbot/pkg/utils"
)

// Handler serves the session state and mutations the widget needs.
type Handler struct {
	session *session.Session
}

// New creates the widget handler around an injected session.
func New(sess *session.Session) *Handler {
	return &Handler{session: sess}
}

// RegisterRoutes mounts the widget routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widget/state", h.handleState)
	r.Post("/widget/input", h.handleSetInput)
	r.Post("/widget/send", h.handleSend)
	r.Post("/widget/emoji", h.handleAddEmoji)
	r.Post("/widget/toggles", h.handleToggles)
	r.Get("/widget/transcript", h.handleTranscript)
	r.Get("/widget/export", h.handleExport)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.session.SetInput(payload.Text)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"input": payload.Text})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	// The exchange must outlive this request: once issued it always
	// settles, even if the widget's HTTP call is long gone.
	err := h.session.Send(context.WithoutCancel(r.Context()))
	if errors.Is(err, session.ErrExchangeInFlight) {
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) handleAddEmoji(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Native string `json:"native"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.session.AddEmoji(payload.Native)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"input": h.session.Input()})
}

func (h *Handler) handleToggles(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChatOpen        *bool `json:"chatOpen"`
		DarkMode        *bool `json:"darkMode"`
		MenuOpen        *bool `json:"menuOpen"`
		ShowEmojiPicker *bool `json:"showEmojiPicker"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.ChatOpen != nil {
		h.session.SetChatOpen(*payload.ChatOpen)
	}
	if payload.DarkMode != nil {
		h.session.SetDarkMode(*payload.DarkMode)
	}
	if payload.MenuOpen != nil {
		h.session.SetMenuOpen(*payload.MenuOpen)
	}
	if payload.ShowEmojiPicker != nil {
		h.session.SetEmojiPickerOpen(*payload.ShowEmojiPicker)
	}

	utils.RespondJSON(w, http.StatusOK, h.session.Snapshot())
}

type transcriptEntry struct {
	ID        string      `json:"id"`
	Sender    chat.Sender `json:"sender"`
	Text      string      `json:"text"`
	Timestamp string      `json:"timestamp"`
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	messages := h.session.Messages()

	entries := make([]transcriptEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, transcriptEntry{
			ID:        m.ID,
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: export.FormatTimestamp(m.CreatedAt, now),
		})
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"messages": entries})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	content, filename := h.session.Export()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}
