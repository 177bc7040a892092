package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"sanctuary-app/internal/music"
)

type playlistRequest struct {
	Tracks []music.Track `json:"tracks" validate:"dive"`
}

type seekRequest struct {
	PositionMs int64 `json:"position" validate:"min=0"`
}

type volumeRequest struct {
	Volume *float64 `json:"volume" validate:"required"`
}

func (api *v1API) handleMusic(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/v1/music"), "/")
	player := api.stores.Music
	ctx := r.Context()

	if rest == "" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, player.State())
		return
	}

	var err error
	switch rest {
	case "playlist":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		var req playlistRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = player.SetPlaylist(ctx, req.Tracks)
	case "track":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		var req music.Track
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = player.SetCurrentTrack(ctx, req)
	case "seek":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req seekRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = player.SeekTo(ctx, req.PositionMs)
	case "volume":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		var req volumeRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		err = player.SetVolume(ctx, *req.Volume)
	case "play", "pause", "stop", "next", "previous":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		err = api.transport(r, rest)
	default:
		writeNotFound(w)
		return
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, player.State())
	case errors.Is(err, music.ErrNoTrack):
		writeAPIError(w, ErrCodeNoTrack, "no track selected")
	case errors.Is(err, music.ErrInvalidTrack):
		writeAPIError(w, ErrCodeValidation, err.Error())
	default:
		api.logger.Error("music operation failed", "action", rest, "error", err)
		writeAPIError(w, ErrCodeInternal, "internal error")
	}
}

func (api *v1API) transport(r *http.Request, action string) error {
	player := api.stores.Music
	switch action {
	case "play":
		return player.Play(r.Context())
	case "pause":
		return player.Pause(r.Context())
	case "stop":
		return player.Stop(r.Context())
	case "next":
		return player.Next(r.Context())
	default:
		return player.Previous(r.Context())
	}
}
