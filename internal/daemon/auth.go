package daemon

import (
	"context"
	"net/http"
	"strings"

	"termchat/internal/types"
)

type userIDKey struct{}

// TokenAuthMiddleware guards /api/ with bearer tokens. Each accepted token
// maps to its own user, so chats are partitioned per token.
func TokenAuthMiddleware(tokens []string, next http.Handler) http.Handler {
	accepted := make(map[string]string, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		accepted[token] = types.TokenFingerprint(token)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			writeError(w, CodeUnauthorized, "unauthorized")
			return
		}
		userID, ok := accepted[strings.TrimSpace(auth[len(prefix):])]
		if !ok {
			writeError(w, CodeUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	})
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}
