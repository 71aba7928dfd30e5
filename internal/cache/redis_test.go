package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_ParsesAddress(t *testing.T) {
	tests := []struct {
		in       string
		wantAddr string
		wantPass string
		wantDB   int
		wantTLS  bool
	}{
		{"redis://:mypassword@redis:6379/1", "redis:6379", "mypassword", 1, false},
		{"rediss://:s3cret@redis.example.com:6380/2", "redis.example.com:6380", "s3cret", 2, true},
		{"redis:6379", "redis:6379", "", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			c, err := NewClient(tc.in)
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })

			opts := c.Options()
			assert.Equal(t, tc.wantAddr, opts.Addr)
			assert.Equal(t, tc.wantPass, opts.Password)
			assert.Equal(t, tc.wantDB, opts.DB)
			assert.Equal(t, tc.wantTLS, opts.TLSConfig != nil)
		})
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("redis://:pw@host:6379/notadb")
	assert.Error(t, err)
}

func TestInitRedis_Unreachable(t *testing.T) {
	assert.Nil(t, InitRedis("127.0.0.1:1"))
}
