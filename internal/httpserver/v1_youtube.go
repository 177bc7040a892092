package httpserver

import (
	"net/http"
	"strings"

	"sanctuary-app/internal/youtube"
)

type youtubeParseResponse struct {
	Valid bool               `json:"valid"`
	Video *youtube.VideoInfo `json:"video"`
}

type youtubeThumbnailResponse struct {
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// handleYouTube serves /v1/youtube/{parse,thumbnail,valid}?url=…; an unrecognised URL is not an error.
func (api *v1API) handleYouTube(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeValidationError(w, map[string]string{"url": "is required"})
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/v1/youtube/") {
	case "parse":
		info, ok := youtube.Parse(raw)
		resp := youtubeParseResponse{Valid: ok}
		if ok {
			resp.Video = &info
		}
		writeJSON(w, http.StatusOK, resp)
	case "thumbnail":
		q := youtube.Quality(r.URL.Query().Get("quality"))
		if q != "" && !q.Valid() {
			writeValidationError(w, map[string]string{"quality": "must be one of: default mqdefault hqdefault sddefault maxresdefault"})
			return
		}
		var resp youtubeThumbnailResponse
		if u, ok := youtube.Thumbnail(raw, q); ok {
			resp.ThumbnailURL = &u
		}
		writeJSON(w, http.StatusOK, resp)
	case "valid":
		writeJSON(w, http.StatusOK, map[string]bool{"valid": youtube.IsValid(raw)})
	default:
		writeNotFound(w)
	}
}
