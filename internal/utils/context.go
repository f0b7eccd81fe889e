package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ContextFarmIDKey contextKey = "farmID"

// WithFarmID stores the tenant farm id on ctx.
func WithFarmID(ctx context.Context, farmID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextFarmIDKey, farmID)
}

func GetFarmIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	farmID, ok := ctx.Value(ContextFarmIDKey).(uuid.UUID)
	return farmID, ok
}
