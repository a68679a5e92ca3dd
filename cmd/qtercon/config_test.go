package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantHost string
		wantPort uint16
		wantErr  string
	}{
		{
			name:     "host only defaults the port",
			input:    "q3.example.org",
			wantHost: "q3.example.org",
			wantPort: 27960,
		},
		{
			name:     "host and port",
			input:    "q3.example.org:27961",
			wantHost: "q3.example.org",
			wantPort: 27961,
		},
		{
			name:     "IPv4 address",
			input:    "192.0.2.1:27960",
			wantHost: "192.0.2.1",
			wantPort: 27960,
		},
		{
			name:     "bracketed IPv6 address with port",
			input:    "[2001:db8::1]:27960",
			wantHost: "2001:db8::1",
			wantPort: 27960,
		},
		{
			name:    "empty argument",
			input:   "",
			wantErr: "host must not be empty",
		},
		{
			name:    "port out of range",
			input:   "q3.example.org:70000",
			wantErr: "port must be between",
		},
		{
			name:    "non-numeric port",
			input:   "q3.example.org:rcon",
			wantErr: "invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := parseTarget(tt.input, "secret")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, server.Host)
			assert.Equal(t, tt.wantPort, server.Port)
			assert.Equal(t, "secret", server.Password)
		})
	}
}

func TestLoadPreferences(t *testing.T) {
	t.Parallel()

	t.Run("reads interval and logging", func(t *testing.T) {
		path := writePreferences(t, `[console]
getstatus_interval = 5000
logging_enabled = false
`)

		prefs, err := loadPreferences(path, true)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, prefs.Interval)
		assert.False(t, prefs.Logging)
	})

	t.Run("missing keys fall back to defaults", func(t *testing.T) {
		path := writePreferences(t, "[console]\n")

		prefs, err := loadPreferences(path, true)
		require.NoError(t, err)
		assert.Equal(t, defaultInterval, prefs.Interval)
		assert.True(t, prefs.Logging)
	})

	t.Run("missing optional file yields defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "preferences.ini")

		prefs, err := loadPreferences(path, false)
		require.NoError(t, err)
		assert.Equal(t, defaultInterval, prefs.Interval)
		assert.True(t, prefs.Logging)
	})

	t.Run("missing required file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "preferences.ini")

		_, err := loadPreferences(path, true)
		assert.Error(t, err)
	})

	t.Run("negative interval is rejected", func(t *testing.T) {
		path := writePreferences(t, `[console]
getstatus_interval = -1
`)

		_, err := loadPreferences(path, true)
		assert.ErrorContains(t, err, "must not be negative")
	})
}

func TestPreprocessVerbosityArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "single -v",
			args: []string{"-v", "host"},
			want: []string{"-v=1", "host"},
		},
		{
			name: "stacked -vv",
			args: []string{"-vv", "host"},
			want: []string{"-v=2", "host"},
		},
		{
			name: "explicit -v=3 passes through",
			args: []string{"-v=3", "host"},
			want: []string{"-v=3", "host"},
		},
		{
			name: "unrelated flags untouched",
			args: []string{"-q", "-version", "host"},
			want: []string{"-q", "-version", "host"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			defer func() { os.Args = origArgs }()

			os.Args = append([]string{"qtercon"}, tt.args...)
			preprocessVerbosityArgs()
			assert.Equal(t, append([]string{"qtercon"}, tt.want...), os.Args)
		})
	}
}

func writePreferences(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preferences.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
