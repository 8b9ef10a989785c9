package middleware

import "context"

type contextKey string

const (
	ctxActorID    contextKey = "actor_id"
	ctxRole       contextKey = "actor_role"
	ctxActorEmail contextKey = "actor_email"
	ctxCartToken  contextKey = "cart_token"
)

func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorEmailFromContext returns the authenticated customer's email. Admin
// tokens carry no email, so this is empty for admin requests.
func ActorEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorEmail).(string); ok {
		return v
	}
	return ""
}

func CartTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartToken).(string); ok {
		return v
	}
	return ""
}

// WithActorID injects the authenticated actor identifier into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorID, actorID)
}

// WithActorEmail injects the authenticated actor's email into the context.
func WithActorEmail(ctx context.Context, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorEmail, email)
}

// WithCartToken injects the browsing session's cart token for downstream handlers.
func WithCartToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartToken, token)
}
