package rest

import "context"

// ContextKey is a private type for request context keys.
type ContextKey string

const (
	// CartIDCtxKey holds the cart id resolved for the request's session.
	CartIDCtxKey = ContextKey("cart_id")

	accessInfoCtxKey = ContextKey("access_info")
)

func CartIDFromContext(ctx context.Context) (string, bool) {
	cartID, ok := ctx.Value(CartIDCtxKey).(string)
	return cartID, ok && cartID != ""
}
