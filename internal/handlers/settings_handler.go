package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/models"
	"github.com/ternarybob/sessionshell/internal/services/settings"
)

// SettingsHandler is the REST mirror of the settings channel
type SettingsHandler struct {
	service SettingsService
	logger  arbor.ILogger
}

func NewSettingsHandler(service SettingsService, logger arbor.ILogger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger,
	}
}

// GetSettingsHandler returns the stored settings; an empty object on first run
func (h *SettingsHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	stored, err := h.service.GetSettings(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load settings")
		WriteError(w, StatusForError(err), err.Error())
		return
	}
	// null when nothing has been saved yet
	WriteJSON(w, http.StatusOK, stored)
}

// PutSettingsHandler replaces the stored settings and reloads the main window
func (h *SettingsHandler) PutSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.Settings
	if err := DecodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.writeAck(w, h.service.SetSettings(r.Context(), payload))
}

// GetURLHandler returns the stored url
func (h *SettingsHandler) GetURLHandler(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.GetURL(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load url")
		WriteError(w, StatusForError(err), err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, models.URLPayload{URL: url})
}

// PutURLHandler stores the url alone, clearing credentials, and reloads the main window
func (h *SettingsHandler) PutURLHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.URLPayload
	if err := DecodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.writeAck(w, h.service.SetURL(r.Context(), payload.URL))
}

func (h *SettingsHandler) writeAck(w http.ResponseWriter, err error) {
	if err != nil && !errors.Is(err, settings.ErrNavigation) {
		WriteError(w, StatusForError(err), err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"navigated": err == nil,
	})
}
