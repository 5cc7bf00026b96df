package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/pkg/config"
)

func TestNewRedisDisabled(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "batch-scheduler:teachers:directory:level:PRIMARY", Key("batch-scheduler", "teachers:directory:level:PRIMARY"))
	assert.Equal(t, "teachers:*", Key("", "teachers:*"))
	assert.Equal(t, "a:b", Key("a:", ":b", ""))
}
