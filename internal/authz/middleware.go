package authz

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taskvault/taskvault/internal/auth"
)

// Middleware authenticates bearer tokens and enforces the path identity
// match for user-scoped routes.
type Middleware struct {
	Validator *auth.Validator
	Logger    *slog.Logger
}

// RequireUser extracts the bearer token, validates it and checks the
// authenticated subject against the {user_id} route parameter. On success
// the principal is stored in the request context. Collection endpoints need
// nothing further; single-resource handlers run the ownership gate on top.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, outcome := bearerToken(r)
		if outcome.Denied {
			m.warn(r, outcome)
			WriteDenial(w, outcome)
			return
		}

		principal, err := m.Validator.Validate(tokenStr)
		if err != nil {
			outcome := DenyWithDetail(ReasonExpiredOrInvalidToken, tokenErrorDetail(err))
			m.warn(r, outcome)
			WriteDenial(w, outcome)
			return
		}

		if outcome := MatchIdentity(principal, chi.URLParam(r, "user_id")); outcome.Denied {
			m.warn(r, outcome)
			WriteDenial(w, outcome)
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken pulls the token out of the Authorization header. A missing
// header and a header that is not a well-formed "Bearer <token>" are
// distinct denial reasons, though both map to 401.
func bearerToken(r *http.Request) (string, Outcome) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", Deny(ReasonMissingToken)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", Deny(ReasonMalformedToken)
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", Deny(ReasonMalformedToken)
	}
	return token, Permit()
}

func tokenErrorDetail(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, auth.ErrMissingSubject):
		return "Token missing subject claim"
	default:
		return "Invalid token"
	}
}

func (m Middleware) warn(r *http.Request, o Outcome) {
	if m.Logger == nil {
		return
	}
	m.Logger.Warn("authorization denied",
		slog.String("reason", string(o.Reason)),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
	)
}
