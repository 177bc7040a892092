package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"sanctuary-app/internal/calls"
)

type callStatusRequest struct {
	Status calls.Status `json:"status" validate:"required"`
}

type callDurationRequest struct {
	Seconds int `json:"seconds" validate:"min=0"`
}

type callTextRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

type addRecordingRequest struct {
	CallID      string `json:"callId" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	DurationSec int    `json:"duration" validate:"min=0"`
}

type addNoteRequest struct {
	CallID string `json:"callId" validate:"required"`
	Text   string `json:"text" validate:"required,max=20000"`
}

func (api *v1API) handleCalls(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, api.stores.Calls.State())
	case http.MethodPost:
		var req calls.Start
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		call, err := api.stores.Calls.StartCall(r.Context(), req)
		if err != nil {
			api.writeCallError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, call)
	default:
		writeMethodNotAllowed(w)
	}
}

func (api *v1API) handleCallSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/calls/")
	parts := splitPath(rest)
	if len(parts) == 0 {
		writeNotFound(w)
		return
	}

	store := api.stores.Calls
	switch parts[0] {
	case "current":
		if len(parts) == 1 {
			api.handleCurrentCall(w, r)
			return
		}
		if len(parts) != 2 || r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		api.handleCallAction(w, r, parts[1])
	case "history":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, store.History())
		case http.MethodDelete:
			store.ClearHistory(r.Context())
			w.WriteHeader(http.StatusNoContent)
		default:
			writeMethodNotAllowed(w)
		}
	case "recordings":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, store.State().Recordings)
		case http.MethodPost:
			var req addRecordingRequest
			if !api.decodeAndValidate(w, r, &req) {
				return
			}
			rec, err := store.AddRecording(r.Context(), calls.Recording{CallID: req.CallID, URL: req.URL, DurationSec: req.DurationSec})
			if err != nil {
				api.writeCallError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, rec)
		default:
			writeMethodNotAllowed(w)
		}
	case "notes":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, store.State().Notes)
		case http.MethodPost:
			var req addNoteRequest
			if !api.decodeAndValidate(w, r, &req) {
				return
			}
			n, err := store.AddNote(r.Context(), req.CallID, req.Text)
			if err != nil {
				api.writeCallError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, n)
		default:
			writeMethodNotAllowed(w)
		}
	default:
		writeNotFound(w)
	}
}

func (api *v1API) handleCurrentCall(w http.ResponseWriter, r *http.Request) {
	store := api.stores.Calls
	switch r.Method {
	case http.MethodGet:
		call := store.Current()
		if call == nil {
			writeAPIError(w, ErrCodeNoActiveCall, "no active call")
			return
		}
		writeJSON(w, http.StatusOK, call)
	case http.MethodDelete:
		ended, err := store.EndCall(r.Context())
		if err != nil {
			api.writeCallError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ended)
	default:
		writeMethodNotAllowed(w)
	}
}

func (api *v1API) handleCallAction(w http.ResponseWriter, r *http.Request, action string) {
	store := api.stores.Calls
	ctx := r.Context()

	var err error
	switch action {
	case "status":
		var req callStatusRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = store.UpdateStatus(ctx, req.Status)
	case "duration":
		var req callDurationRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = store.UpdateDuration(ctx, req.Seconds)
	case "notes":
		var req callTextRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = store.SetNotes(ctx, req.Text)
	case "transcription":
		var req callTextRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = store.SetTranscription(ctx, req.Text)
	case "mute":
		err = store.ToggleMute(ctx)
	case "speaker":
		err = store.ToggleSpeaker(ctx)
	case "video":
		err = store.ToggleVideo(ctx)
	case "recording":
		err = store.ToggleRecording(ctx)
	case "end":
		var ended calls.Session
		if ended, err = store.EndCall(ctx); err == nil {
			writeJSON(w, http.StatusOK, ended)
			return
		}
	default:
		writeNotFound(w)
		return
	}
	if err != nil {
		api.writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store.State())
}

func (api *v1API) writeCallError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calls.ErrNoActiveCall):
		writeAPIError(w, ErrCodeNoActiveCall, "no active call")
	case errors.Is(err, calls.ErrCallInProgress):
		writeAPIError(w, ErrCodeCallInProgress, "a call is already in progress")
	case errors.Is(err, calls.ErrInvalidTransition):
		writeAPIError(w, ErrCodeCallInvalidState, err.Error())
	case errors.Is(err, calls.ErrInvalidCall), errors.Is(err, calls.ErrInvalidStatus):
		writeAPIError(w, ErrCodeValidation, err.Error())
	default:
		api.logger.Error("call operation failed", "error", err)
		writeAPIError(w, ErrCodeInternal, "internal error")
	}
}
