package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"sanctuary-app/internal/appconfig"
)

const settingsPermission = "settings.edit"

func (api *v1API) handleAppConfig(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/v1/app-config"), "/")
	store := api.stores.AppConfig
	ctx := r.Context()

	if rest == "" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, store.Config())
		return
	}

	switch rest {
	case "light-colors", "dark-colors", "branding", "images", "features":
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w)
			return
		}
		if !api.requireAdmin(w, settingsPermission) {
			return
		}
		api.patchAppConfig(w, r, rest)
	case "export":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		if !api.requireAdmin(w, settingsPermission) {
			return
		}
		b, err := store.Export()
		if err != nil {
			api.logger.Error("export config failed", "error", err)
			writeAPIError(w, ErrCodeInternal, "internal error")
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="app-config.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	case "import":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		if !api.requireAdmin(w, settingsPermission) {
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			writeAPIError(w, ErrCodeValidation, "request body too large")
			return
		}
		cfg, err := store.Import(ctx, body)
		if errors.Is(err, appconfig.ErrInvalidImport) {
			writeAPIError(w, ErrCodeValidation, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	case "reset":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		if !api.requireAdmin(w, settingsPermission) {
			return
		}
		writeJSON(w, http.StatusOK, store.ResetToDefaults(ctx))
	default:
		writeNotFound(w)
	}
}

func (api *v1API) patchAppConfig(w http.ResponseWriter, r *http.Request, section string) {
	store := api.stores.AppConfig
	ctx := r.Context()

	var cfg appconfig.Config
	switch section {
	case "light-colors", "dark-colors":
		var p appconfig.ColorsPatch
		if !api.decodeAndValidate(w, r, &p) {
			return
		}
		if section == "light-colors" {
			cfg = store.UpdateLightColors(ctx, p)
		} else {
			cfg = store.UpdateDarkColors(ctx, p)
		}
	case "branding":
		var p appconfig.BrandingPatch
		if !api.decodeAndValidate(w, r, &p) {
			return
		}
		cfg = store.UpdateBranding(ctx, p)
	case "images":
		var p appconfig.ImagesPatch
		if !api.decodeAndValidate(w, r, &p) {
			return
		}
		cfg = store.UpdateImages(ctx, p)
	case "features":
		var p appconfig.FeaturesPatch
		if !api.decodeAndValidate(w, r, &p) {
			return
		}
		cfg = store.UpdateFeatures(ctx, p)
	}
	writeJSON(w, http.StatusOK, cfg)
}
