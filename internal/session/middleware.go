package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// InvalidStoreContext is the error code when the Store-Context header cannot be parsed.
const InvalidStoreContext = "invalid_store_context"

// Middleware creates HTTP middleware that resolves the request Session.
// Requests without a Store-Context header get defaults. Fields missing from
// the header fall back to defaults individually. defaults.Version is the API
// version this server implements.
func Middleware(defaults Session, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			s := defaults
			if header := r.Header.Get(Header); header != "" {
				parsed, err := ParseHeader(header)
				if err != nil {
					logger.Warn("invalid Store-Context header",
						slog.String("header", header),
						slog.String("error", err.Error()))
					writeSessionError(w, http.StatusBadRequest, InvalidStoreContext,
						"Invalid Store-Context header: "+err.Error())
					return
				}
				s = merge(defaults, parsed)
			}

			if err := CheckVersion(defaults.Version, s.Version); err != nil {
				var verErr *VersionError
				if errors.As(err, &verErr) {
					writeSessionError(w, http.StatusBadRequest, verErr.Code, verErr.Message)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func merge(defaults, s Session) Session {
	if s.Channel == "" {
		s.Channel = defaults.Channel
	}
	if s.Locale == "" {
		s.Locale = defaults.Locale
	}
	if s.Version == "" {
		s.Version = defaults.Version
	}
	return s
}

// isExemptPath returns true for infrastructure paths that carry no storefront context.
func isExemptPath(path string) bool {
	return path == "/health" || path == "/healthz"
}

// writeSessionError writes the standard error envelope.
func writeSessionError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = code
	resp.Error.Message = message

	json.NewEncoder(w).Encode(resp)
}
