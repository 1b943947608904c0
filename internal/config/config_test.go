package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, enum validation and defaulting.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing address.
	err := Validate(new(Config))
	require.ErrorIs(t, err, errServerAddressRequired)

	// Bad address.
	err = Validate(&Config{ServerAddress: "bad:address"})
	require.Error(t, err)

	// Unknown presenter.
	err = Validate(&Config{ServerAddress: "127.0.0.1:0", Presenter: "banner"})
	require.ErrorIs(t, err, errUnknownPresenter)

	// Unknown permission model.
	err = Validate(&Config{ServerAddress: "127.0.0.1:0", Permission: "ask"})
	require.ErrorIs(t, err, errUnknownPermission)

	// Unknown log level.
	err = Validate(&Config{ServerAddress: "127.0.0.1:0", LogLevel: "loud"})
	require.ErrorIs(t, err, errUnknownLogLevel)

	// Negative coalescing interval.
	err = Validate(&Config{ServerAddress: "127.0.0.1:0", MinRepeatInterval: -time.Second})
	require.ErrorIs(t, err, errNegativeInterval)

	// Defaults.
	cfg := &Config{ServerAddress: "127.0.0.1:0", Presenter: " LOG "}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultAlarmDBFilename, cfg.AlarmDB)
	require.Equal(t, DefaultConsentFilename, cfg.ConsentFile)
	require.Equal(t, DefaultIntentFilename, cfg.IntentFile)
	require.InDelta(t, DefaultPresenterRate, cfg.PresenterRate, 0)
	require.Equal(t, PresenterLog, cfg.Presenter)
	require.Equal(t, PermissionNone, cfg.Permission)
	require.Equal(t, "info", cfg.LogLevel)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		ServerAddress:     "127.0.0.1:50061",
		Timeout:           3 * time.Second,
		MinRepeatInterval: time.Minute,
		Presenter:         PresenterLog,
		Permission:        PermissionStatic,
		PermissionGrant:   true,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestSave_NilConfig verifies that a nil configuration is rejected.
func TestSave_NilConfig(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil), errConfigIsNotSet)
}
