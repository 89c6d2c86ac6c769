package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRenderer_RendersMarkdownWithHost(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "# Relay\n\nPoint your client at `http://${host}/api`.\n\nAgain: ${host}\n")
	html, err := NewRenderer(path).Render("relay.example.com")
	require.NoError(t, err)

	require.Contains(t, html, "<title>SD Horde Imitator</title>")
	require.Contains(t, html, "<h1>Relay</h1>")
	require.Contains(t, html, "http://relay.example.com/api")
	require.Contains(t, html, "Again: ${host}", "only the first placeholder is substituted")
}

func TestRenderer_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer(filepath.Join(t.TempDir(), "nope.md")).Render("localhost")
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHostname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		host      string
		forwarded string
		want      string
	}{
		{name: "plain host", host: "example.com", want: "example.com"},
		{name: "host with port", host: "example.com:7860", want: "example.com"},
		{name: "ipv6 with port", host: "[::1]:7860", want: "::1"},
		{name: "forwarded wins", host: "10.0.0.1:7860", forwarded: "relay.example.com", want: "relay.example.com"},
		{name: "forwarded list", host: "x", forwarded: "a.example.com:443, b.example.com", want: "a.example.com"},
		{name: "empty", want: "localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Hostname(tt.host, tt.forwarded))
		})
	}
}
