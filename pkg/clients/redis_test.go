package clients

import (
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/stretchr/testify/assert"
)

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(&cfg.RedisCfg{
		Addr:        "redis:6379",
		User:        "u",
		Password:    "p",
		DB:          2,
		MaxRetries:  3,
		DialTimeout: time.Second,
		Timeout:     2 * time.Second,
	})

	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, clientName, opts.ClientName)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
	assert.Equal(t, 2*time.Second, opts.WriteTimeout)
}
