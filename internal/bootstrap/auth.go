package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/inkpost/inkpost/config"
	"github.com/inkpost/inkpost/internal/adapters/devauth"
	"github.com/inkpost/inkpost/internal/adapters/oidc"
	redisadapter "github.com/inkpost/inkpost/internal/adapters/redis"
	"github.com/inkpost/inkpost/internal/core"
	"github.com/inkpost/inkpost/internal/ports"
	"github.com/inkpost/inkpost/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Users       core.UserRepository
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	// Redis session store shared by both modes
	sessionStore := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:")

	var prov ports.AuthProvider
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov = buildDevAuthProvider(cfg)
	case config.AuthModeOAuth:
		prov = buildOIDCProvider(cfg)
	}
	if prov == nil {
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:   prov,
		Sessions:   sessionStore,
		Users:      cfg.Users,
		SessionTTL: cfg.Auth.SessionTTL,
	})
}

//nolint:ireturn // ports.AuthProvider keeps mode selection in one place.
func buildDevAuthProvider(cfg AuthConfig) ports.AuthProvider {
	prov, err := devauth.NewProvider(devauth.Config{
		Subject:   cfg.Auth.DevAuth.Subject,
		Email:     cfg.Auth.DevAuth.Email,
		Name:      cfg.Auth.DevAuth.Name,
		AvatarURL: cfg.Auth.DevAuth.AvatarURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}
	return prov
}

//nolint:ireturn // ports.AuthProvider keeps mode selection in one place.
func buildOIDCProvider(cfg AuthConfig) ports.AuthProvider {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}
	return prov
}
