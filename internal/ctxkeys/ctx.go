package ctxkeys

import (
	"context"

	"github.com/tip2talk/server/internal/config"
	"github.com/tip2talk/server/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	ProfileKey contextKey = "profile"
	ConfigKey  contextKey = "config"
)

func Profile(ctx context.Context) *model.Profile {
	profile, _ := ctx.Value(ProfileKey).(*model.Profile)
	return profile
}

func WithProfile(ctx context.Context, profile *model.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}
