package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/config"
	"github.com/muurk/lightbridge/internal/tui"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{in: "#ff8800", r: 255, g: 136, b: 0},
		{in: "00ff7f", r: 0, g: 255, b: 127},
		{in: "255,136,0", r: 255, g: 136, b: 0},
		{in: " 1, 2, 3", r: 1, g: 2, b: 3},
		{in: "256,0,0", wantErr: true},
		{in: "#fff", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b, err := parseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, [3]uint8{tt.r, tt.g, tt.b}, [3]uint8{r, g, b})
		})
	}
}

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "ON", "1", "true"} {
		on, err := parseOnOff(s)
		require.NoError(t, err)
		assert.True(t, on, s)
	}
	for _, s := range []string{"off", "Off", "0", "false"} {
		on, err := parseOnOff(s)
		require.NoError(t, err)
		assert.False(t, on, s)
	}
	_, err := parseOnOff("dim")
	assert.Error(t, err)
}

func TestHints(t *testing.T) {
	assert.Contains(t, hints(commands.ErrUnavailable), "This feature is not supported on this machine")

	argErr := fmt.Errorf("wrapped: %w", &commands.ArgumentError{Field: "value", Err: errors.New("out of range")})
	tips := hints(argErr)
	require.Len(t, tips, 1)
	assert.Contains(t, tips[0], `"value"`)

	assert.Empty(t, hints(errors.New("plain")))
}

func TestShownErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := error(&shownError{err: inner})

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "boom", err.Error())
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"discover", "status", "send", "turn", "brightness", "color", "dashboard", "cloud", "radio", "wifi", "bridges", "config", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestLightFromConfig(t *testing.T) {
	saved := app.cfg
	t.Cleanup(func() { app.cfg = saved })

	app.cfg = config.NewRegistry()
	app.cfg.Devices["AA:BB"] = &config.Device{Nickname: "desk", Model: "H6076", LastIP: "192.168.1.20"}

	want := tui.Light{Host: "192.168.1.20", Model: "H6076", DeviceID: "AA:BB", Nickname: "desk"}
	assert.Equal(t, want, lightFromConfig("desk"))
	assert.Equal(t, want, lightFromConfig("AA:BB"))
	assert.Equal(t, want, lightFromConfig("192.168.1.20"))
	assert.Equal(t, tui.Light{Host: "10.0.0.7"}, lightFromConfig("10.0.0.7"))
}
