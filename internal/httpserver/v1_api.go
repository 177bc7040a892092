package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"log/slog"

	"github.com/go-playground/validator/v10"

	"sanctuary-app/internal/remote"
	"sanctuary-app/internal/state"
)

type v1API struct {
	logger   *slog.Logger
	stores   *state.Container
	remote   Remote
	validate *validator.Validate
}

func newV1API(logger *slog.Logger, stores *state.Container, rc Remote) *v1API {
	return &v1API{
		logger:   logger.With("component", "v1"),
		stores:   stores,
		remote:   rc,
		validate: newValidator(),
	}
}

type apiErrorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeAPIError(w http.ResponseWriter, code ErrorCode, message string) {
	writeJSON(w, httpStatusForCode(code), apiErrorEnvelope{
		Error: apiError{
			Code:    string(code),
			Message: message,
		},
	})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, httpStatusForCode(ErrCodeValidation), apiErrorEnvelope{
		Error: apiError{
			Code:    string(ErrCodeValidation),
			Message: "invalid request",
			Fields:  fields,
		},
	})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeAPIError(w, ErrCodeMethodNotAllowed, "method not allowed")
}

func writeNotFound(w http.ResponseWriter) {
	writeAPIError(w, ErrCodeNotFound, "not found")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected extra JSON input")
	}
	return nil
}

// decodeAndValidate decodes the body into dst and runs struct validation. It writes the
// error response itself and reports whether the handler should continue.
func (api *v1API) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeAPIError(w, ErrCodeValidation, "invalid JSON body")
		return false
	}
	if err := api.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeValidationError(w, formatValidationErrors(verrs))
			return false
		}
		writeAPIError(w, ErrCodeValidation, err.Error())
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}

// writeRemoteError maps a backend procedure failure. Backend messages are surfaced verbatim.
func (api *v1API) writeRemoteError(w http.ResponseWriter, proc string, err error) {
	var rerr *remote.Error
	switch {
	case errors.Is(err, remote.ErrNotConfigured):
		writeAPIError(w, ErrCodeRemoteNotConfigured, "remote api not configured")
	case errors.Is(err, remote.ErrInvalidPrice):
		writeAPIError(w, ErrCodeValidation, err.Error())
	case errors.As(err, &rerr):
		api.logger.Warn("remote procedure failed", "procedure", proc, "code", rerr.Code, "error", err)
		writeAPIError(w, ErrCodeRemote, rerr.Message)
	default:
		api.logger.Error("remote procedure failed", "procedure", proc, "error", err)
		writeAPIError(w, ErrCodeRemote, err.Error())
	}
}

// requireRemote writes REMOTE_NOT_CONFIGURED when no backend client is wired.
func (api *v1API) requireRemote(w http.ResponseWriter) bool {
	if api.remote == nil {
		writeAPIError(w, ErrCodeRemoteNotConfigured, "remote api not configured")
		return false
	}
	return true
}

// requireAdmin gates dashboard routes on a live admin session and, when permission is set,
// on that permission.
func (api *v1API) requireAdmin(w http.ResponseWriter, permission string) bool {
	if !api.stores.Admin.IsLoggedIn() {
		writeAPIError(w, ErrCodeAdminLoginRequired, msgAdminLoginRequired)
		return false
	}
	if permission != "" && !api.stores.Admin.HasPermission(permission) {
		writeAPIError(w, ErrCodeForbidden, "missing permission "+permission)
		return false
	}
	return true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
