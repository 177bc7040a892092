package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary-app/internal/logging"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(logging.Discard(), srv.URL+"/trpc/", time.Second)
}

func writeResult(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"data": data}})
}

func TestFetchContent_EnrichesVideos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/trpc/content.getAll", r.URL.Path)
		writeResult(w, map[string]any{
			"sermons": []map[string]any{
				{"id": "s1", "title": "Grace", "youtubeUrl": "https://youtu.be/ABC123"},
				{"id": "s2", "title": "Audio only", "youtubeUrl": ""},
			},
		})
	})

	content, err := c.FetchContent(context.Background())
	require.NoError(t, err)
	require.Len(t, content.Sermons, 2)
	require.NotNil(t, content.Sermons[0].Video)
	assert.Equal(t, "ABC123", content.Sermons[0].Video.VideoID)
	assert.Nil(t, content.Sermons[1].Video)
	assert.NotNil(t, content.LiveVideos)
}

func TestMutation_PostsJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trpc/shop.createProduct", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var in map[string]any
		assert.NoError(t, json.Unmarshal(body, &in))
		assert.Equal(t, "Hymnal", in["name"])
		assert.Equal(t, "12.5", in["price"])
		writeResult(w, map[string]any{"id": "p1", "name": "Hymnal", "price": 12.5, "inStock": true})
	})

	p, err := c.CreateProduct(context.Background(), ProductInput{
		Name:  "Hymnal",
		Price: decimal.RequireFromString("12.499"),
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("12.50")))
}

func TestCreateProduct_RejectsNegativePrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	_, err := c.CreateProduct(context.Background(), ProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestError_MessageSurfacedVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid email or password","data":{"code":"UNAUTHORIZED","httpStatus":401}}}`)
	})

	_, err := c.AdminLogin(context.Background(), "a@b.c", "nope")
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "Invalid email or password", rerr.Message)
	assert.Equal(t, "UNAUTHORIZED", rerr.Code)
	assert.Equal(t, http.StatusUnauthorized, rerr.HTTPStatus)
	assert.Equal(t, "admin.login", rerr.Procedure)
}

func TestError_NonJSONFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	_, err := c.ListProducts(context.Background())
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusBadGateway, rerr.HTTPStatus)
}

func TestQuery_EncodesInput(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("input")
		writeResult(w, []any{})
	})
	var out []any
	require.NoError(t, c.query(context.Background(), "content.search", map[string]string{"q": "hope"}, &out))
	assert.JSONEq(t, `{"q":"hope"}`, got)
}

func TestDeleteProduct_NoResultBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"id":"p1"}`, string(body))
		_, _ = io.WriteString(w, `{"result":{}}`)
	})
	require.NoError(t, c.DeleteProduct(context.Background(), " p1 "))
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(logging.Discard(), "", 0)
	assert.False(t, c.Configured())
	_, err := c.ListFlaggedPosts(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}
