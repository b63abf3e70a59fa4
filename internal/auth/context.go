package auth

import "context"

type ctxKey struct{}

// WithSessionSecret stores the caller's session secret on the context.
func WithSessionSecret(ctx context.Context, secret string) context.Context {
	if secret == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, secret)
}

// SessionSecretFromContext returns the session secret carried by ctx, if any.
func SessionSecretFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	secret, _ := ctx.Value(ctxKey{}).(string)
	return secret
}
