// Package testutil provides common test utilities for the filmspin project.
package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/filmspin/filmspin/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	TMDBAPIKey      string
	OMDBAPIKeys     []string
	PoiskkinoAPIKey string
	OMDBMockEnabled bool
	RUEnabled       bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		TMDBAPIKey:      config.TMDBAPIKey,
		OMDBAPIKeys:     config.OMDBAPIKeys,
		PoiskkinoAPIKey: config.PoiskkinoAPIKey,
		OMDBMockEnabled: config.OMDBMockEnabled,
		RUEnabled:       config.RUEnabled,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.TMDBAPIKey = state.TMDBAPIKey
	config.OMDBAPIKeys = state.OMDBAPIKeys
	config.PoiskkinoAPIKey = state.PoiskkinoAPIKey
	config.OMDBMockEnabled = state.OMDBMockEnabled
	config.RUEnabled = state.RUEnabled
}

// WithCleanConfig resets viper and the config globals for a test, restoring
// both when the test completes.
func WithCleanConfig(t *testing.T) {
	t.Helper()

	saved := SaveConfigState()
	t.Cleanup(func() {
		RestoreConfigState(saved)
		viper.Reset()
	})

	viper.Reset()
	config.SetDefaults()
	config.InitConfig()
}
