package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sprintdesk/internal/api"
)

type actorContextKey struct{}

func contextWithActor(ctx context.Context, actorID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// actorFromContext returns the acting user id, or nil when the request carried none.
func actorFromContext(ctx context.Context) *int64 {
	if ctx == nil {
		return nil
	}
	value, ok := ctx.Value(actorContextKey{}).(int64)
	if !ok {
		return nil
	}
	return &value
}

// withActor reads the acting user from the X-Actor-ID header set by the auth layer.
func (s *Server) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(api.ActorHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		actorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || actorID <= 0 {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("invalid %s header", api.ActorHeader), ErrCodeInvalidActor))
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithActor(r.Context(), actorID)))
	})
}
