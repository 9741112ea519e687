package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// accessInfo is filled in by inner middleware so the access log can report it.
type accessInfo struct {
	cartID string
}

// Logger writes one access log line and records request metrics per request.
func Logger(log logger.Logger, m *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			info := &accessInfo{}
			r = r.WithContext(context.WithValue(r.Context(), accessInfoCtxKey, info))

			next.ServeHTTP(ww, r)

			took := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			if m != nil {
				m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
				m.HTTPRequestLatency.WithLabelValues(r.Method, route).Observe(took.Seconds())
			}

			log.Infow("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", took.String(),
				"cart_id", info.cartID,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// Session resolves the session cookie to a cart id and stores it in the request
// context. A new cookie is set whenever the resolver issues a fresh token.
func Session(resolver service.SessionResolver, cfg config.SessionConfig, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				token = cookie.Value
			}

			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				log.Errorf("Failed to resolve session: %v", err)
				code, message := errorStatus(err)
				respondWithError(w, code, message)
				return
			}

			if session.Issued {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    session.Token,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if info, ok := r.Context().Value(accessInfoCtxKey).(*accessInfo); ok {
				info.cartID = session.CartID
			}
			ctx := context.WithValue(r.Context(), CartIDCtxKey, session.CartID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
