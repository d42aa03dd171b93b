package auth

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
)

// AuditLogger writes one JSON line per authenticated request recording which
// principal performed it. It runs after the identity middleware, so every
// logged request names a verified principal.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(stream io.Writer) AuditLogger {
	return AuditLogger{logger: slog.New(slog.NewJSONHandler(stream, nil))}
}

func remoteAddr(r *http.Request) string {
	for _, header := range []string{"X-Real-Ip", "X-Forwarded-For"} {
		if ip := r.Header.Get(header); ip != "" {
			return ip
		}
	}
	return r.RemoteAddr
}

// routeArgs collects the chi url params and the query params of a request as
// log attributes.
func routeArgs(r *http.Request) []interface{} {
	args := make([]interface{}, 0)

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key != "*" {
				args = append(args, slog.String(key, rctx.URLParams.Values[i]))
			}
		}
	}
	for key, values := range r.URL.Query() {
		args = append(args, slog.String(key, strings.Join(values, ",")))
	}

	return args
}

func (log *AuditLogger) Middleware(next http.Handler) http.Handler {
	handler := func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromRequest(r)
		if err != nil {
			utils.WriteErrorJson(w, err.Error(), "internal", http.StatusInternalServerError)
			return
		}

		log.logger.Info("request",
			"principal_kind", identity.Kind.String(),
			"principal_id", identity.ID,
			"remote", remoteAddr(r),
			"method", r.Method,
			"path", r.URL.Path,
			slog.Group("args", routeArgs(r)...),
		)

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(handler)
}
