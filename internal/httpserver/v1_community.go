package httpserver

import (
	"net/http"
	"strings"

	"sanctuary-app/internal/remote"
)

type selectionRequest struct {
	GroupID        *string `json:"groupId"`
	ConversationID *string `json:"conversationId"`
}

type draftRequest struct {
	Text string `json:"text" validate:"max=10000"`
}

type draftResponse struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type moderateRequest struct {
	Action remote.ModerationAction `json:"action" validate:"required,oneof=approve remove"`
}

func (api *v1API) handleCommunity(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/v1/community"), "/")
	parts := splitPath(rest)
	if len(parts) == 0 {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, api.stores.Community.State())
		return
	}

	switch parts[0] {
	case "selection":
		if len(parts) != 1 {
			writeNotFound(w)
			return
		}
		api.handleSelection(w, r)
	case "drafts":
		if len(parts) != 2 {
			writeNotFound(w)
			return
		}
		api.handleDraft(w, r, parts[1])
	case "groups":
		if len(parts) != 1 {
			writeNotFound(w)
			return
		}
		api.handleCreateGroup(w, r)
	case "flagged":
		api.handleFlagged(w, r, parts[1:])
	default:
		writeNotFound(w)
	}
}

func (api *v1API) handleSelection(w http.ResponseWriter, r *http.Request) {
	store := api.stores.Community
	switch r.Method {
	case http.MethodPut:
		var req selectionRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		if req.GroupID != nil {
			store.SelectGroup(r.Context(), strings.TrimSpace(*req.GroupID))
		}
		if req.ConversationID != nil {
			store.SelectConversation(r.Context(), strings.TrimSpace(*req.ConversationID))
		}
		writeJSON(w, http.StatusOK, store.State())
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, store.ClearSelection(r.Context()))
	default:
		writeMethodNotAllowed(w)
	}
}

func (api *v1API) handleDraft(w http.ResponseWriter, r *http.Request, key string) {
	store := api.stores.Community
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, draftResponse{Key: key, Text: store.GetDraft(key)})
	case http.MethodPut:
		var req draftRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		store.SaveDraft(r.Context(), key, req.Text)
		writeJSON(w, http.StatusOK, draftResponse{Key: key, Text: store.GetDraft(key)})
	case http.MethodDelete:
		store.ClearDraft(r.Context(), key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (api *v1API) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !api.requireRemote(w) {
		return
	}
	var req remote.GroupInput
	if !api.decodeAndValidate(w, r, &req) {
		return
	}
	g, err := api.remote.CreateGroup(r.Context(), req)
	if err != nil {
		api.writeRemoteError(w, "community.createGroup", err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// handleFlagged serves the moderation queue: GET /flagged and POST /flagged/{id}/moderate.
func (api *v1API) handleFlagged(w http.ResponseWriter, r *http.Request, parts []string) {
	if !api.requireAdmin(w, "community.moderate") {
		return
	}
	if !api.requireRemote(w) {
		return
	}

	switch {
	case len(parts) == 0:
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		posts, err := api.remote.ListFlaggedPosts(r.Context())
		if err != nil {
			api.writeRemoteError(w, "community.getFlaggedPosts", err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	case len(parts) == 2 && parts[1] == "moderate":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req moderateRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		if err := api.remote.ModeratePost(r.Context(), parts[0], req.Action); err != nil {
			api.writeRemoteError(w, "community.moderatePost", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeNotFound(w)
	}
}
