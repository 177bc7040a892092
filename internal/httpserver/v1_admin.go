package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"sanctuary-app/internal/admin"
)

type adminSessionResponse struct {
	IsLoggedIn bool               `json:"isLoggedIn"`
	User       *admin.User        `json:"user"`
	StaffName  string             `json:"staffName"`
	Team       []admin.TeamMember `json:"teamMembers"`
	ExpiresAt  *time.Time         `json:"expiresAt,omitempty"`
}

func newAdminSessionResponse(s admin.Session) adminSessionResponse {
	return adminSessionResponse{
		IsLoggedIn: s.User != nil,
		User:       s.User,
		StaffName:  s.StaffName,
		Team:       s.Team,
		ExpiresAt:  s.ExpiresAt,
	}
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type staffNameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type permissionCheckResponse struct {
	Permission admin.Permission `json:"permission"`
	Granted    bool             `json:"granted"`
}

func (api *v1API) handleAdmin(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/")
	parts := splitPath(rest)
	if len(parts) == 0 {
		writeNotFound(w)
		return
	}

	switch parts[0] {
	case "session":
		if len(parts) != 1 || r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, newAdminSessionResponse(api.stores.Admin.Session()))
	case "login":
		if len(parts) != 1 || r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		api.handleAdminLogin(w, r)
	case "logout":
		if len(parts) != 1 || r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, newAdminSessionResponse(api.stores.Admin.Logout(r.Context())))
	case "staff-name":
		if len(parts) != 1 || r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		if !api.requireAdmin(w, "") {
			return
		}
		var req staffNameRequest
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, newAdminSessionResponse(api.stores.Admin.SetStaffName(r.Context(), req.Name)))
	case "team":
		api.handleTeam(w, r, parts[1:])
	case "permissions":
		api.handlePermissions(w, r, parts[1:])
	default:
		writeNotFound(w)
	}
}

func (api *v1API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	s, err := api.stores.Admin.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newAdminSessionResponse(s))
	case errors.Is(err, admin.ErrInvalidCredentials):
		writeAPIError(w, ErrCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, admin.ErrLoginUnavailable):
		writeAPIError(w, ErrCodeAdminLoginUnavailable, "admin login is not configured")
	case errors.Is(err, admin.ErrInvalidUser):
		api.logger.Warn("admin login returned no user", "error", err)
		writeAPIError(w, ErrCodeRemote, "admin login failed")
	default:
		api.writeRemoteError(w, "admin.login", err)
	}
}

func (api *v1API) handleTeam(w http.ResponseWriter, r *http.Request, parts []string) {
	store := api.stores.Admin

	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			if !api.requireAdmin(w, "") {
				return
			}
			writeJSON(w, http.StatusOK, store.Team())
		case http.MethodPost:
			if !api.requireAdmin(w, "team.manage") {
				return
			}
			var req admin.TeamMemberInput
			if !api.decodeAndValidate(w, r, &req) {
				return
			}
			m, err := store.AddTeamMember(r.Context(), req)
			if err != nil {
				writeAPIError(w, ErrCodeValidation, err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, m)
		default:
			writeMethodNotAllowed(w)
		}
	case 1:
		id := parts[0]
		switch r.Method {
		case http.MethodPatch:
			if !api.requireAdmin(w, "team.manage") {
				return
			}
			var req admin.TeamMemberPatch
			if !api.decodeAndValidate(w, r, &req) {
				return
			}
			m, err := store.UpdateTeamMember(r.Context(), id, req)
			if errors.Is(err, admin.ErrNotFound) {
				writeAPIError(w, ErrCodeTeamMemberNotFound, "team member not found")
				return
			}
			writeJSON(w, http.StatusOK, m)
		case http.MethodDelete:
			if !api.requireAdmin(w, "team.manage") {
				return
			}
			if err := store.RemoveTeamMember(r.Context(), id); err != nil {
				writeAPIError(w, ErrCodeTeamMemberNotFound, "team member not found")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeMethodNotAllowed(w)
		}
	default:
		writeNotFound(w)
	}
}

func (api *v1API) handlePermissions(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	switch len(parts) {
	case 0:
		writeJSON(w, http.StatusOK, admin.Catalog)
	case 1:
		p := admin.PermissionsFor(parts[:1])
		if len(p) == 0 {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, permissionCheckResponse{
			Permission: p[0],
			Granted:    api.stores.Admin.HasPermission(p[0].ID),
		})
	default:
		writeNotFound(w)
	}
}
