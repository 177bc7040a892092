package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"sanctuary-app/internal/auth"
)

type sessionResponse struct {
	auth.Session
	IsAuthenticated bool `json:"isAuthenticated"`
}

func newSessionResponse(s auth.Session) sessionResponse {
	return sessionResponse{Session: s, IsAuthenticated: s.IsAuthenticated()}
}

type loginRequest struct {
	ID    string    `json:"id" validate:"required,max=128"`
	Name  string    `json:"name" validate:"max=120"`
	Email string    `json:"email" validate:"omitempty,email"`
	Role  auth.Role `json:"role" validate:"required,oneof=admin member guest"`
}

type onboardingResponse struct {
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
}

func (api *v1API) handleAuth(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/auth/")
	parts := splitPath(rest)
	if len(parts) != 1 {
		writeNotFound(w)
		return
	}

	store := api.stores.Auth
	ctx := r.Context()

	switch parts[0] {
	case "session":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(store.Session()))
	case "login":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req loginRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		s, err := store.Login(ctx, auth.User{ID: req.ID, Name: req.Name, Email: req.Email, Role: req.Role})
		if err != nil {
			if errors.Is(err, auth.ErrInvalidRole) || errors.Is(err, auth.ErrInvalidUser) {
				writeAPIError(w, ErrCodeValidation, err.Error())
				return
			}
			api.logger.Error("login failed", "error", err)
			writeAPIError(w, ErrCodeInternal, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(s))
	case "guest":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(store.LoginAsGuest(ctx)))
	case "logout":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(store.Logout(ctx)))
	case "welcome":
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusOK, newSessionResponse(store.SetWelcomeSeen(ctx)))
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, newSessionResponse(store.ResetWelcome(ctx)))
		default:
			writeMethodNotAllowed(w)
		}
	default:
		writeNotFound(w)
	}
}

func (api *v1API) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/v1/onboarding"), "/")
	ob := api.stores.Onboarding

	switch rest {
	case "":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
	case "complete":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		ob.Complete(r.Context())
	case "reset":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		ob.Reset(r.Context())
	default:
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, onboardingResponse{HasCompletedOnboarding: ob.Completed()})
}
