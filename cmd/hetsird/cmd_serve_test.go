package main

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spboyer/hetsird/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHost(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name        string
		host        string
		allowRemote bool
		want        string
	}{
		{"loopback kept", "127.0.0.1", false, "127.0.0.1"},
		{"localhost kept", "localhost", false, "localhost"},
		{"ipv6 loopback kept", "::1", false, "::1"},
		{"all interfaces forced to loopback", "0.0.0.0", false, "127.0.0.1"},
		{"remote forced to loopback", "10.0.0.5", false, "127.0.0.1"},
		{"remote allowed", "0.0.0.0", true, "0.0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveHost(tt.host, tt.allowRemote, logger))
		})
	}
}

func TestCommandsCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "commands")
	require.NoError(t, err)

	var ref metadata.Reference
	require.NoError(t, json.Unmarshal([]byte(stdout), &ref))
	assert.Equal(t, "hetsird", ref.Program)

	names := make(map[string]metadata.Command)
	for _, c := range ref.Commands {
		names[c.Name[0]] = c
	}
	for _, want := range []string{"simulate", "rates", "compare", "sweep", "validate", "inspect", "report", "init", "serve"} {
		assert.Contains(t, names, want)
	}
	assert.True(t, names["commands"].Hidden)

	var subgroup metadata.Flag
	for _, f := range names["simulate"].Flags {
		if f.Name == "subgroup" {
			subgroup = f
		}
	}
	assert.Equal(t, "subgroup", subgroup.Type)
	assert.True(t, subgroup.Repeatable)
}
