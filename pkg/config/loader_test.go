package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ignews/pkg/config"
)

type basicConfig struct {
	Name    string `env:"NAME" envDefault:"ignews"`
	Port    int    `env:"PORT" envDefault:"8080"`
	Enabled bool   `env:"ENABLED" envDefault:"true"`
}

type requiredConfig struct {
	Secret string `env:"SECRET,required"`
}

type validatedConfig struct {
	Status int `env:"STATUS" envDefault:"200"`
}

func (c *validatedConfig) Validate() error {
	if c.Status != 200 && c.Status != 500 {
		return errors.New("status must be 200 or 500")
	}
	return nil
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		var cfg basicConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
		require.NoError(t, err)
		assert.Equal(t, "ignews", cfg.Name)
		assert.Equal(t, 8080, cfg.Port)
		assert.True(t, cfg.Enabled)
	})

	t.Run("reads values", func(t *testing.T) {
		t.Parallel()

		var cfg basicConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{
			"NAME":    "blog",
			"PORT":    "9000",
			"ENABLED": "false",
		}))
		require.NoError(t, err)
		assert.Equal(t, "blog", cfg.Name)
		assert.Equal(t, 9000, cfg.Port)
		assert.False(t, cfg.Enabled)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		var cfg basicConfig
		err := config.Load(&cfg,
			config.WithPrefix("APP_"),
			config.WithEnvironment(map[string]string{"APP_NAME": "prefixed", "NAME": "plain"}),
		)
		require.NoError(t, err)
		assert.Equal(t, "prefixed", cfg.Name)
	})

	t.Run("missing required value", func(t *testing.T) {
		t.Parallel()

		var cfg requiredConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		t.Parallel()

		err := config.Load[basicConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})

	t.Run("runs validation", func(t *testing.T) {
		t.Parallel()

		var cfg validatedConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{"STATUS": "404"}))
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)

		err = config.Load(&cfg, config.WithEnvironment(map[string]string{"STATUS": "500"}))
		require.NoError(t, err)
		assert.Equal(t, 500, cfg.Status)
	})
}

func TestLoad_Dotenv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("SECRET=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SECRET") })

	var cfg requiredConfig
	require.NoError(t, config.Load(&cfg, config.WithDotenv(file)))
	assert.Equal(t, "from-file", cfg.Secret)

	err := config.Load(&cfg, config.WithDotenv(filepath.Join(dir, "missing.env")))
	assert.ErrorIs(t, err, config.ErrDotenv)
}

func TestMustLoad(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg, config.WithEnvironment(map[string]string{}))
	})
	assert.NotPanics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg, config.WithEnvironment(map[string]string{"SECRET": "x"}))
	})
}
