package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")

	c, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, c.StorageDriver)
	assert.Equal(t, ":8081", c.HTTPPort)
	assert.Equal(t, ":50051", c.GrpcPort)
	assert.Equal(t, "kaydee", c.MongoDatabase)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
}

func TestFromEnv_DriverRequirements(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := fromEnv()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/kaydee?sslmode=disable")
	_, err = fromEnv()
	assert.NoError(t, err)

	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")
	_, err = fromEnv()
	assert.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("STORAGE_DRIVER", "redis")
	_, err = fromEnv()
	assert.ErrorContains(t, err, "unknown STORAGE_DRIVER")
}

func TestFromEnv_BadDuration(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err := fromEnv()
	assert.Error(t, err)
}

func TestFromEnv_AdminToken(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ADMIN_TOKEN", "not-a-uuid")
	_, err := fromEnv()
	assert.ErrorContains(t, err, "ADMIN_TOKEN")

	t.Setenv("ADMIN_TOKEN", "6f1c2a8e-3b7d-4f0a-9c21-5d8e4b6a7f10")
	c, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "6f1c2a8e-3b7d-4f0a-9c21-5d8e4b6a7f10", c.AdminToken)

	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/kaydee?sslmode=disable")
	_, err = fromEnv()
	assert.ErrorContains(t, err, "ADMIN_TOKEN")
}
