package boot

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		assert := assert.New(t)
		t.Setenv("GROUPS", "team:aGFzaA==,ops:b3Bz")

		config, err := Load()
		assert.Nil(err)
		if config == nil {
			t.FailNow()
		}

		assert.True(config.IsDevelopment())
		assert.False(config.TracingEnabled())
		assert.Equal("8080", config.Server.Port)
		assert.Equal("memory", config.Store.Backend)
		assert.Equal("ChatBot", config.Store.WelcomeAuthor)
		assert.Equal("bhook++", config.Store.WelcomeText)
		assert.Equal(int64(5242880), config.Ingest.AttachmentMaxBytes)
		assert.Equal(10, config.Access.MaxFailures)
		assert.Equal(5*time.Minute, config.Access.FailureWindow)
		assert.Equal(2*time.Second, config.StreamInterval)
		assert.Empty(config.Server.TrustedProxies)
		assert.Equal(map[string]string{"team": "aGFzaA==", "ops": "b3Bz"}, config.Groups)
	})

	t.Run("Overrides", func(t *testing.T) {
		assert := assert.New(t)
		t.Setenv("GROUPS", "team:aGFzaA==")
		t.Setenv("ENV", "prod")
		t.Setenv("STORE_BACKEND", "sqlite")
		t.Setenv("CENSORED_WORDS", "darn,heck")
		t.Setenv("TRACE_ENDPOINT", "localhost:4318")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1/32")

		config, err := Load()
		assert.Nil(err)
		if config == nil {
			t.FailNow()
		}

		assert.True(config.IsProduction())
		assert.True(config.TracingEnabled())
		assert.Equal("sqlite", config.Store.Backend)
		assert.Equal([]string{"darn", "heck"}, config.Ingest.CensoredWords)
		assert.Equal([]string{"10.0.0.0/8", "192.168.1.1/32"}, config.Server.TrustedProxies)
	})

	t.Run("Zero failure window", func(t *testing.T) {
		t.Setenv("GROUPS", "team:aGFzaA==")
		t.Setenv("ACCESS_FAILURE_WINDOW", "0s")
		_, err := Load()
		assert.NotNil(t, err)

		t.Setenv("ACCESS_MAX_FAILURES", "0")
		_, err = Load()
		assert.Nil(t, err)
	})

	t.Run("Missing groups", func(t *testing.T) {
		t.Setenv("GROUPS", "unset")
		os.Unsetenv("GROUPS")
		_, err := Load()
		assert.NotNil(t, err)
	})
}
