package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iudanet/posauth/pkg/api"
)

// PanicResponder пишет клиенту ответ после перехваченной паники
type PanicResponder func(logger *slog.Logger, w http.ResponseWriter)

// Recovery создает middleware для восстановления после паники.
// Перехватывает panic, логирует стек вызовов и отвечает через respond.
// При respond == nil отвечает JSONInternalError.
func Recovery(logger *slog.Logger, respond PanicResponder) func(http.Handler) http.Handler {
	if respond == nil {
		respond = JSONInternalError
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.ErrorContext(r.Context(), "Panic recovered",
						slog.Any("error", err),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("remote_addr", r.RemoteAddr),
						slog.String("stack", string(debug.Stack())),
					)

					// Детали паники клиенту не раскрываем
					respond(logger, w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// JSONInternalError отвечает 500 с телом api.ErrorResponse
func JSONInternalError(logger *slog.Logger, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	resp := api.ErrorResponse{
		Error:   http.StatusText(http.StatusInternalServerError),
		Message: "internal server error",
		Code:    api.CodeInternalError,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode panic response", slog.Any("error", err))
	}
}
