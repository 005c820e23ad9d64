package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cosplay-angola/server/internal/api/handlers"
	"github.com/cosplay-angola/server/internal/api/middleware"
	"github.com/cosplay-angola/server/internal/config"
	"github.com/cosplay-angola/server/internal/domain/accounts"
	"github.com/cosplay-angola/server/internal/domain/events"
	"github.com/cosplay-angola/server/internal/domain/media"
	"github.com/cosplay-angola/server/internal/domain/newsletter"
	"github.com/cosplay-angola/server/internal/metrics"
)

// Services bundles everything the router mounts. The pool is only used by
// the readiness endpoint; repositories are already bound inside the services.
type Services struct {
	Accounts   *accounts.Service
	Events     *events.Service
	Categories *events.CategoryService
	Partners   *events.PartnerService
	Media      *media.Service
	Newsletter *newsletter.Service

	Pool      *pgxpool.Pool
	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter mounts every endpoint and wraps the tree with the shared
// middleware chain.
func NewRouter(cfg config.Config, logger zerolog.Logger, svcs Services) http.Handler {
	env := cfg.Environment

	authHandler := handlers.NewAuthHandler(svcs.Accounts, env)
	eventsHandler := handlers.NewEventsHandler(svcs.Events, env)
	categoriesHandler := handlers.NewCategoriesHandler(svcs.Categories, env)
	partnersHandler := handlers.NewPartnersHandler(svcs.Partners, env)
	mediaHandler := handlers.NewMediaHandler(svcs.Media, env)
	newsletterHandler := handlers.NewNewsletterHandler(svcs.Newsletter, env)
	rootHandler := handlers.NewRootHandler(cfg.Server.BaseURL, svcs.Version)
	health := handlers.NewHealthChecker(svcs.Pool, svcs.Version, svcs.GitCommit)

	requireAuth := middleware.RequireAuthenticated(env)
	requireSuperuser := middleware.RequireSuperuser(env)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", health.Readyz())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/version", VersionHandler(svcs.Version, svcs.GitCommit, svcs.BuildDate))
	mux.Handle("/api/v1/openapi.json", OpenAPIHandler())

	mux.Handle("/api/v1", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(rootHandler.Index),
	}))

	mux.Handle("/api/v1/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Register),
	}))
	mux.Handle("/api/v1/auth/token", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Token),
	}))
	mux.Handle("/api/v1/auth/token/refresh", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Refresh),
	}))
	mux.Handle("/api/v1/auth/token/verify", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Verify),
	}))
	mux.Handle("/api/v1/auth/user", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(authHandler.User)),
	}))
	mux.Handle("/api/v1/auth/logout", methodMux(map[string]http.Handler{
		http.MethodPost: requireAuth(http.HandlerFunc(authHandler.Logout)),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: requireSuperuser(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/api/v1/events/proximos", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Proximos),
	}))
	mux.Handle("/api/v1/events/passados", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Passados),
	}))
	mux.Handle("/api/v1/events/destaques", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Destaques),
	}))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    requireSuperuser(http.HandlerFunc(eventsHandler.Update)),
		http.MethodPatch:  requireSuperuser(http.HandlerFunc(eventsHandler.Patch)),
		http.MethodDelete: requireSuperuser(http.HandlerFunc(eventsHandler.Delete)),
	}))
	mux.Handle("/api/v1/events/{id}/relacionados", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Relacionados),
	}))

	mux.Handle("/api/v1/categories", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(categoriesHandler.List),
		http.MethodPost: requireSuperuser(http.HandlerFunc(categoriesHandler.Create)),
	}))
	mux.Handle("/api/v1/categories/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(categoriesHandler.Get),
		http.MethodPut:    requireSuperuser(http.HandlerFunc(categoriesHandler.Update)),
		http.MethodDelete: requireSuperuser(http.HandlerFunc(categoriesHandler.Delete)),
	}))

	mux.Handle("/api/v1/partners", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(partnersHandler.List),
		http.MethodPost: requireSuperuser(http.HandlerFunc(partnersHandler.Create)),
	}))
	mux.Handle("/api/v1/partners/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(partnersHandler.Get),
		http.MethodPut: requireSuperuser(http.HandlerFunc(partnersHandler.Update)),
	}))

	mux.Handle("/api/v1/media", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(mediaHandler.List),
	}))
	mux.Handle("/api/v1/media/upload", methodMux(map[string]http.Handler{
		http.MethodPost: requireSuperuser(http.HandlerFunc(mediaHandler.Upload)),
	}))
	mux.Handle("/api/v1/media/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(mediaHandler.Get),
		http.MethodDelete: requireAuth(http.HandlerFunc(mediaHandler.Delete)),
	}))

	mux.Handle("/api/v1/newsletter/subscribe", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(newsletterHandler.Subscribe),
	}))

	var handler http.Handler = mux
	handler = middleware.ResolveActor(svcs.Accounts)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = tagLoginTier(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = middleware.CORS(cfg.CORS, env == "development", logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	return handler
}

// tagLoginTier marks credential endpoints so the rate limiter applies the
// stricter login bucket instead of the public one.
func tagLoginTier(next http.Handler) http.Handler {
	tagged := middleware.WithRateLimitTierHandler(middleware.TierLogin)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/v1/auth/token" {
			tagged.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
