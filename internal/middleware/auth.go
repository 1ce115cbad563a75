package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/penshort/linkstats/internal/auth"
	"github.com/penshort/linkstats/internal/model"
)

// DefaultMinAuthDuration pads every auth attempt so failures and cache hits
// take the same wall time.
const DefaultMinAuthDuration = 200 * time.Millisecond

// lastUsedTimeout bounds the background last_used_at update.
const lastUsedTimeout = 5 * time.Second

// KeyStore looks up persisted API keys.
type KeyStore interface {
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// AuthCache stores verified auth contexts keyed by a quick hash of the key.
type AuthCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, authCtx *model.AuthContext) error
}

// AuthConfig holds the auth middleware dependencies.
type AuthConfig struct {
	Logger      *slog.Logger
	Keys        KeyStore
	Cache       AuthCache
	MinDuration time.Duration
}

// Auth authenticates API requests by bearer key and injects the
// resulting auth context. Every failure yields the same 401 body.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			defer func() {
				if elapsed := time.Since(start); elapsed < cfg.MinDuration {
					time.Sleep(cfg.MinDuration - elapsed)
				}
			}()

			authCtx, cacheHit, reason := authenticate(r, cfg)
			if authCtx == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing API key")
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("key_id", authCtx.KeyID),
				slog.String("key_prefix", authCtx.KeyPrefix),
				slog.String("user_id", authCtx.UserID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			next.ServeHTTP(w, r.WithContext(auth.ContextWithAuth(r.Context(), authCtx)))
		})
	}
}

// authenticate resolves the request's key. On failure it returns a nil
// context and a log reason.
func authenticate(r *http.Request, cfg AuthConfig) (*model.AuthContext, bool, string) {
	key := extractAPIKey(r)
	if key == "" {
		return nil, false, "missing_key"
	}

	parsed, err := auth.ParseAPIKey(key)
	if err != nil {
		return nil, false, "invalid_format"
	}

	cacheKey := auth.QuickHash(key)
	if cfg.Cache != nil {
		if cached, err := cfg.Cache.GetAuthContext(r.Context(), cacheKey); err == nil && cached != nil {
			return cached, true, ""
		}
	}

	candidates, err := cfg.Keys.GetAPIKeysByPrefix(r.Context(), parsed.Prefix)
	if err != nil {
		cfg.Logger.Error("api key lookup failed",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		return nil, false, "lookup_error"
	}

	// Prefixes can collide, so every candidate is verified.
	var matched *model.APIKey
	for _, k := range candidates {
		if ok, err := auth.VerifyKey(key, k.KeyHash); err == nil && ok {
			matched = k
			break
		}
	}
	if matched == nil || matched.IsRevoked() {
		return nil, false, "invalid_key"
	}

	authCtx := matched.AuthContext()
	if cfg.Cache != nil {
		if err := cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx); err != nil {
			cfg.Logger.Warn("auth cache write failed", slog.String("error", err.Error()))
		}
	}

	go func(ctx context.Context, id string) {
		ctx, cancel := context.WithTimeout(ctx, lastUsedTimeout)
		defer cancel()
		_ = cfg.Keys.UpdateAPIKeyLastUsed(ctx, id)
	}(context.WithoutCancel(r.Context()), matched.ID)

	return authCtx, false, ""
}

// extractAPIKey reads "Authorization: Bearer <key>", falling back to X-API-Key.
func extractAPIKey(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.Header.Get("X-API-Key")
}
