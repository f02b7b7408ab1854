package bootstrap

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/config"
)

func TestNewServices_NilDeps(t *testing.T) {
	services := NewServices(nil)

	assert.Nil(t, services.Auth)
	assert.Nil(t, services.Posts)
	assert.Nil(t, services.Users)
}

func TestNewServices_WiresPostAndUserServices(t *testing.T) {
	services := NewServices(&ServiceDeps{Config: &config.AppConfig{}})

	require.NotNil(t, services.Posts)
	require.NotNil(t, services.Users)
	// No redis client means sessions have nowhere to live
	assert.Nil(t, services.Auth)
}

func TestNewServices_MockAuthMode(t *testing.T) {
	// Client construction does not connect; BuildAuthService only wires it in.
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { _ = client.Close() })

	services := NewServices(&ServiceDeps{
		Config: &config.AppConfig{
			Auth: config.AuthConfig{
				Mode: config.AuthModeMock,
				DevAuth: config.DevAuthConfig{
					Subject: "dev-1",
					Email:   "dev@example.com",
				},
			},
		},
		RedisClient: client,
	})

	require.NotNil(t, services.Auth)
	require.NotNil(t, services.Posts)
	require.NotNil(t, services.Users)
}
