package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"sanctuary-app/internal/events"
)

type eventItem struct {
	events.Event
	ReminderEnabled bool `json:"reminderEnabled"`
}

type remindersResponse struct {
	EventIDs []string `json:"eventIds"`
}

func (api *v1API) eventItem(e events.Event) eventItem {
	return eventItem{Event: e, ReminderEnabled: api.stores.Reminders.Has(e.ID)}
}

func (api *v1API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/v1/events"), "/")
	parts := splitPath(rest)

	switch len(parts) {
	case 0:
		list := api.stores.Events.List()
		items := make([]eventItem, 0, len(list))
		for _, e := range list {
			items = append(items, api.eventItem(e))
		}
		writeJSON(w, http.StatusOK, items)
	case 1:
		e, err := api.stores.Events.Get(parts[0])
		if errors.Is(err, events.ErrNotFound) {
			writeAPIError(w, ErrCodeEventNotFound, msgEventNotFound)
			return
		}
		writeJSON(w, http.StatusOK, api.eventItem(e))
	default:
		writeNotFound(w)
	}
}

func (api *v1API) handleReminders(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/v1/reminders"), "/")
	parts := splitPath(rest)
	store := api.stores.Reminders

	switch len(parts) {
	case 0:
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, remindersResponse{EventIDs: store.Enabled()})
	case 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, events.ReminderChange{EventID: id, Enabled: store.Has(id)})
		case http.MethodPost:
			if _, err := api.stores.Events.Get(id); errors.Is(err, events.ErrNotFound) {
				writeAPIError(w, ErrCodeEventNotFound, msgEventNotFound)
				return
			}
			enabled := store.Toggle(r.Context(), id)
			writeJSON(w, http.StatusOK, events.ReminderChange{EventID: id, Enabled: enabled})
		default:
			writeMethodNotAllowed(w)
		}
	default:
		writeNotFound(w)
	}
}
