package middleware

import (
	"context"
	"net/http"

	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/auth"
)

// ActorResolver turns a bearer access token into the acting account.
type ActorResolver interface {
	ResolveActor(ctx context.Context, accessToken string) (*auth.Actor, error)
}

type actorKey struct{}

// ActorFrom returns the authenticated actor, or nil for anonymous requests.
func ActorFrom(ctx context.Context) *auth.Actor {
	actor, _ := ctx.Value(actorKey{}).(*auth.Actor)
	return actor
}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor *auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ResolveActor annotates the request context with the authenticated actor.
// It never rejects: anonymous and invalid tokens both pass through as "no
// actor" so public read endpoints stay reachable. Guards decide later.
func ResolveActor(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := resolver.ResolveActor(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IsAuthenticated(ActorFrom(r.Context())) {
				problem.Write(w, r, http.StatusUnauthorized,
					"https://cosplayangola.ao/problems/unauthorized", "Unauthorized", nil, env,
					problem.WithDetail("As credenciais de autenticação não foram fornecidas."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser rejects anonymous requests with 401 and authenticated
// non-superusers with 403.
func RequireSuperuser(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFrom(r.Context())
			if !auth.IsAuthenticated(actor) {
				problem.Write(w, r, http.StatusUnauthorized,
					"https://cosplayangola.ao/problems/unauthorized", "Unauthorized", nil, env,
					problem.WithDetail("As credenciais de autenticação não foram fornecidas."))
				return
			}
			if !auth.SuperuserOnly(actor) {
				problem.Write(w, r, http.StatusForbidden,
					"https://cosplayangola.ao/problems/forbidden", "Forbidden", nil, env,
					problem.WithDetail("Você não tem permissão para executar essa ação."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
