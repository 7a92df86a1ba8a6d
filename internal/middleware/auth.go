package middleware

import (
	"context"
	"net/http"

	"emo-pages-backend/internal/services"
)

type contextKey string

const streamClaimsKey contextKey = "stream_claims"

// StreamAuth checks the stream token passed as ?token= and stores its claims
// in the request context
func StreamAuth(tokens *services.StreamTokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.URL.Query().Get("token")
			if token == "" {
				respondError(w, "token required", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), streamClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetStreamClaims extracts stream claims from context
func GetStreamClaims(ctx context.Context) *services.StreamClaims {
	claims, ok := ctx.Value(streamClaimsKey).(*services.StreamClaims)
	if !ok {
		return nil
	}
	return claims
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
