package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BotStatus is a read-only snapshot of one running bot, exposed over
// HTTP for operators. It carries no pending-order or strategy-internal
// detail, only what an external observer needs (spec.md's out-of-scope
// line excludes an HTTP/UI front end beyond this thin surface).
type BotStatus struct {
	ID       string  `json:"id"`
	MarketID string  `json:"market_id"`
	Strategy string  `json:"strategy"`
	Mode     string  `json:"mode"`
	Settled  bool    `json:"settled"`
	Cash     float64 `json:"cash"`
	YesSize  float64 `json:"yes_size"`
	NoSize   float64 `json:"no_size"`
}

// BotStatusProvider is implemented by internal/bot.Registry so this
// package never imports internal/bot directly.
type BotStatusProvider interface {
	Statuses() []BotStatus
}

// BotStatusHandler serves read-only bot state.
type BotStatusHandler struct {
	provider BotStatusProvider
	logger   *zap.Logger
}

// NewBotStatusHandler creates a new bot status handler.
func NewBotStatusHandler(provider BotStatusProvider, logger *zap.Logger) *BotStatusHandler {
	return &BotStatusHandler{provider: provider, logger: logger}
}

// HandleList handles GET /api/bots, listing every currently running bot.
func (h *BotStatusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.provider.Statuses())
}

// HandleState handles GET /api/bots/{id}/state for a single bot.
func (h *BotStatusHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	for _, st := range h.provider.Statuses() {
		if st.ID == id {
			h.writeJSON(w, st)
			return
		}
	}

	h.writeError(w, "bot not found", http.StatusNotFound)
}

func (h *BotStatusHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *BotStatusHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := struct {
		Error string `json:"error"`
	}{Error: message}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
