package httpserver

import (
	"net/http"
	"strings"

	"sanctuary-app/internal/remote"
)

func (api *v1API) handleContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if !api.requireRemote(w) {
		return
	}
	content, err := api.remote.FetchContent(r.Context())
	if err != nil {
		api.writeRemoteError(w, "content.getAll", err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// handleProducts lists the shop publicly; writes need shop.manage.
func (api *v1API) handleProducts(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/v1/shop/products"), "/")
	parts := splitPath(rest)
	if len(parts) > 1 {
		writeNotFound(w)
		return
	}
	if r.Method != http.MethodGet && !api.requireAdmin(w, "shop.manage") {
		return
	}
	if !api.requireRemote(w) {
		return
	}
	ctx := r.Context()

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			products, err := api.remote.ListProducts(ctx)
			if err != nil {
				api.writeRemoteError(w, "shop.getProducts", err)
				return
			}
			writeJSON(w, http.StatusOK, products)
		case http.MethodPost:
			var req remote.ProductInput
			if !api.decodeAndValidate(w, r, &req) {
				return
			}
			p, err := api.remote.CreateProduct(ctx, req)
			if err != nil {
				api.writeRemoteError(w, "shop.createProduct", err)
				return
			}
			writeJSON(w, http.StatusCreated, p)
		default:
			writeMethodNotAllowed(w)
		}
		return
	}

	id := parts[0]
	switch r.Method {
	case http.MethodPatch:
		var req remote.ProductPatch
		if !api.decodeAndValidate(w, r, &req) {
			return
		}
		p, err := api.remote.UpdateProduct(ctx, id, req)
		if err != nil {
			api.writeRemoteError(w, "shop.updateProduct", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := api.remote.DeleteProduct(ctx, id); err != nil {
			api.writeRemoteError(w, "shop.deleteProduct", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}
