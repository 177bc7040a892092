package httpserver

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sanctuary-app/internal/remote"
	"sanctuary-app/internal/state"
	"sanctuary-app/internal/ws"
)

type Readiness interface {
	Ready(ctx context.Context) error
}

// Remote is the subset of backend procedures the API proxies.
type Remote interface {
	FetchContent(ctx context.Context) (remote.Content, error)
	ListProducts(ctx context.Context) ([]remote.Product, error)
	CreateProduct(ctx context.Context, in remote.ProductInput) (remote.Product, error)
	UpdateProduct(ctx context.Context, id string, patch remote.ProductPatch) (remote.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListFlaggedPosts(ctx context.Context) ([]remote.FlaggedPost, error)
	ModeratePost(ctx context.Context, postID string, action remote.ModerationAction) error
	CreateGroup(ctx context.Context, in remote.GroupInput) (remote.Group, error)
}

type HandlerOptions struct {
	// ClientToken, when set, must be presented as a bearer token on every non-health route.
	ClientToken string
	Remote      Remote
	Gatherer    prometheus.Gatherer
}

func NewHandler(logger *slog.Logger, ready Readiness, stores *state.Container, wsManager *ws.Manager, opts HandlerOptions) http.Handler {
	mux := http.NewServeMux()
	api := newV1API(logger, stores, opts.Remote)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := ready.Ready(r.Context()); err != nil {
			logger.Warn("ready check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.Handle("/v1/ws", wsManager.Handler())
	mux.HandleFunc("/v1/theme", api.handleTheme)
	mux.HandleFunc("/v1/theme/system", api.handleThemeSystem)
	mux.HandleFunc("/v1/auth/", api.handleAuth)
	mux.HandleFunc("/v1/onboarding", api.handleOnboarding)
	mux.HandleFunc("/v1/onboarding/", api.handleOnboarding)
	mux.HandleFunc("/v1/admin/", api.handleAdmin)
	mux.HandleFunc("/v1/events", api.handleEvents)
	mux.HandleFunc("/v1/events/", api.handleEvents)
	mux.HandleFunc("/v1/reminders", api.handleReminders)
	mux.HandleFunc("/v1/reminders/", api.handleReminders)
	mux.HandleFunc("/v1/community", api.handleCommunity)
	mux.HandleFunc("/v1/community/", api.handleCommunity)
	mux.HandleFunc("/v1/calls", api.handleCalls)
	mux.HandleFunc("/v1/calls/", api.handleCallSubroutes)
	mux.HandleFunc("/v1/music", api.handleMusic)
	mux.HandleFunc("/v1/music/", api.handleMusic)
	mux.HandleFunc("/v1/app-config", api.handleAppConfig)
	mux.HandleFunc("/v1/app-config/", api.handleAppConfig)
	mux.HandleFunc("/v1/youtube/", api.handleYouTube)
	mux.HandleFunc("/v1/content", api.handleContent)
	mux.HandleFunc("/v1/shop/products", api.handleProducts)
	mux.HandleFunc("/v1/shop/products/", api.handleProducts)

	return chain(
		mux,
		recoverMiddleware(logger),
		requestLogMiddleware(logger),
		corsMiddleware(),
		clientTokenMiddleware(opts.ClientToken),
	)
}
