package util

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/token"
)

// GetTokenPayloadFromContext returns the verified access token payload, nil for anonymous requests.
func GetTokenPayloadFromContext(ctx context.Context) *token.Payload {
	if v, ok := ctx.Value(constants.AuthorizationPayloadKey).(*token.Payload); ok {
		return v
	}
	return nil
}

// GetUserIDFromContext returns 0 for anonymous requests.
func GetUserIDFromContext(ctx context.Context) uint {
	if p := GetTokenPayloadFromContext(ctx); p != nil {
		return p.UserID
	}
	return 0
}

func GetSessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(constants.SessionIDKey).(string); ok {
		return v
	}
	return ""
}

func GetRequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return v
	}
	return ""
}
