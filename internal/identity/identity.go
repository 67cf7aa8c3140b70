package identity

import (
	"context"
	"fmt"
)

// Resolver turns a user id into a human-readable display name for audit
// annotations. Resolution is non-critical: callers fall back to the raw id
// when it fails.
type Resolver interface {
	DisplayName(ctx context.Context, userID int) (string, error)
}

// FallbackResolver renders the raw user id. It is the default when no
// identity service is configured.
type FallbackResolver struct{}

func NewFallbackResolver() *FallbackResolver {
	return &FallbackResolver{}
}

func (r *FallbackResolver) DisplayName(_ context.Context, userID int) (string, error) {
	return fmt.Sprintf("user %d", userID), nil
}

// Describe resolves a display name, degrading to the raw id on failure.
func Describe(ctx context.Context, resolver Resolver, userID *int) string {
	if userID == nil {
		return "system"
	}
	if resolver == nil {
		return fmt.Sprintf("user %d", *userID)
	}
	name, err := resolver.DisplayName(ctx, *userID)
	if err != nil || name == "" {
		return fmt.Sprintf("user %d", *userID)
	}
	return name
}
