package auth

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// RequireOperator rejects requests without a valid bearer token and stores
// the operator id on the request context.
func (s Service) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			common.RenderError(w, ErrUnauthorized)
			return
		}
		id, err := s.ParseAccessToken(raw)
		if err != nil {
			common.RenderError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithOperatorID(r.Context(), id.String())))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
