package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/angelmondragon/atacado-backend/api/responses"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

// Recoverer converts a handler panic into a 500 envelope. http.ErrAbortHandler
// is re-raised so the server still tears down the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic_value": fmt.Sprint(rec),
						"panic_stack": string(debug.Stack()),
						"method":      r.Method,
						"path":        r.URL.Path,
					})
					logg.Error(ctx, "handler.panic", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recovered from handler panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
