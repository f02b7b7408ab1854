package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/inkpost/inkpost/config"
	"github.com/inkpost/inkpost/internal/core"
	"github.com/inkpost/inkpost/internal/data"
	"github.com/inkpost/inkpost/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth  *service.AuthService
	Posts *service.PostService
	Users core.UserRepository
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	UserRepo *data.UserRepo
	PostRepo *data.PostRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		UserRepo: data.NewUserRepo(db),
		PostRepo: data.NewPostRepo(db),
	}
}

// NewServices wires business services using repositories and adapters.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	repos := buildRepositories(deps.DB)

	authService := BuildAuthService(AuthConfig{
		Auth:        appCfg.Auth,
		RedisClient: deps.RedisClient,
		Users:       repos.UserRepo,
		Logger:      logger,
	})

	postService := service.NewPostService(service.PostServiceOptions{
		Posts: repos.PostRepo,
	})

	return ServiceContainer{
		Auth:  authService,
		Posts: postService,
		Users: repos.UserRepo,
	}
}
