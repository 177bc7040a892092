package httpserver

import (
	"errors"
	"net/http"

	"sanctuary-app/internal/theme"
)

type setThemeRequest struct {
	Mode theme.Mode `json:"mode" validate:"required"`
}

type setSystemSchemeRequest struct {
	Scheme theme.Scheme `json:"scheme" validate:"required,oneof=light dark"`
}

func (api *v1API) handleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, api.stores.Theme.View())
	case http.MethodPut:
		var req setThemeRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		if err := api.stores.Theme.SetMode(r.Context(), req.Mode); err != nil {
			if errors.Is(err, theme.ErrInvalidMode) {
				writeValidationError(w, map[string]string{"mode": "must be one of: light dark system"})
				return
			}
			api.logger.Error("set theme failed", "error", err)
			writeAPIError(w, ErrCodeInternal, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, api.stores.Theme.View())
	default:
		writeMethodNotAllowed(w)
	}
}

// handleThemeSystem lets the host platform report its current color scheme.
func (api *v1API) handleThemeSystem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeMethodNotAllowed(w)
		return
	}
	var req setSystemSchemeRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}
	api.stores.Theme.SetSystemScheme(req.Scheme)
	writeJSON(w, http.StatusOK, api.stores.Theme.View())
}
