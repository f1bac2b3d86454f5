package domain

import "context"

type contextKey string

const actorKey contextKey = "actor_user_id"

// WithActor stores the acting user's ID in the context. Set once by the
// auth middleware; read wherever a mutation needs attribution.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// ActorFromContext returns the acting user's ID, or empty when the call
// did not pass through authentication (seed scripts, tests).
func ActorFromContext(ctx context.Context) string {
	userID, ok := ctx.Value(actorKey).(string)
	if !ok {
		return ""
	}
	return userID
}
