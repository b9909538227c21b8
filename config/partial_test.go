package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFoldLayers_HighestPrecedenceWins(t *testing.T) {
	flags := &partial{Port: ptr(uint16(7070))}
	env := &partial{Port: ptr(uint16(9090)), Host: ptr("0.0.0.0")}
	file := &partial{Port: ptr(uint16(9000)), LogLevel: ptr("debug")}

	merged, err := foldLayers(flags, env, file)
	require.NoError(t, err)

	assert.Equal(t, uint16(7070), *merged.Port)
	assert.Equal(t, "0.0.0.0", *merged.Host)
	assert.Equal(t, "debug", *merged.LogLevel)
}

func TestFoldLayers_ExplicitZeroBeatsLaterLayer(t *testing.T) {
	// --verbose=false must not be clobbered by TRIBOFERRIN_VERBOSE=true.
	flags := &partial{Verbose: ptr(false)}
	env := &partial{Verbose: ptr(true)}

	merged, err := foldLayers(flags, env)
	require.NoError(t, err)

	require.NotNil(t, merged.Verbose)
	assert.False(t, *merged.Verbose)
}

func TestFoldLayers_NilLayersSkipped(t *testing.T) {
	merged, err := foldLayers(nil, &partial{Host: ptr("example.com")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com", *merged.Host)
}

func TestOverlay_AbsentFieldsKeepDefaults(t *testing.T) {
	cfg := Default()
	p := &partial{Port: ptr(uint16(9090))}
	p.overlay(&cfg)

	assert.Equal(t, uint16(9090), cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFieldKey(t *testing.T) {
	assert.Equal(t, "discord_token", fieldKey("DiscordToken"))
	assert.Equal(t, "discord_api_url", fieldKey("DiscordAPIURL"))
	assert.Equal(t, "log_level", fieldKey("LogLevel"))
	assert.Equal(t, "Unknown", fieldKey("Unknown"))
}
