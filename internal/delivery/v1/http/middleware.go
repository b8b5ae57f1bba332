package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// CORS разрешает запросы с любого origin; preflight отвечает пустым 200.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Recover отвечает на панику обработчика JSON-конвертом {error, details} со статусом 500.
// http.ErrAbortHandler пробрасывается дальше, как в middleware.Recoverer.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
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

				log.Errorf(fmt.Errorf("panic: %v", rec), "%s %s panicked, request_id=%s",
					r.Method, r.URL.Path, middleware.GetReqID(r.Context()))

				message := e.ErrInternalServerError.Error()
				if strings.HasSuffix(r.URL.Path, "/explore") {
					message = exploreFailed
				}
				WriteErrorDetails(w, http.StatusInternalServerError, message, fmt.Sprint(rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
