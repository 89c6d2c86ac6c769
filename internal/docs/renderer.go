// Package docs renders the service README as the HTML landing page.
package docs

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yuin/goldmark"
)

// HostPlaceholder is replaced by the requesting hostname.
const HostPlaceholder = "${host}"

const pageTemplate = `
    <html>
        <head>
            <title>SD Horde Imitator</title>
            <style>
                body {
                    display: flex;
                    flex-direction: column;
                    justify-content: center;
                    align-items: center;
                    gap: 10px;
                }

                p {
                    margin: 0;
                }
            </style>
        </head>
        <body>
            %s
        </body>
    </html>
    `

// Renderer turns a markdown file into the landing page.
type Renderer struct {
	path string
	md   goldmark.Markdown
}

// NewRenderer constructs a Renderer for the markdown file at path.
func NewRenderer(path string) *Renderer {
	return &Renderer{path: path, md: goldmark.New()}
}

// Render reads the document fresh on every call, so edits show up without a
// restart.
func (r *Renderer) Render(host string) (string, error) {
	source, err := os.ReadFile(r.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", r.path, err)
	}
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	body := strings.Replace(buf.String(), HostPlaceholder, host, 1)
	return fmt.Sprintf(pageTemplate, body), nil
}

// Hostname extracts the bare hostname from a Host header value, trusting a
// forwarded host when one is present.
func Hostname(host, forwardedHost string) string {
	if forwardedHost != "" {
		host = strings.TrimSpace(strings.Split(forwardedHost, ",")[0])
	}
	if host == "" {
		return "localhost"
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return strings.Trim(h, "[]")
	}
	return host
}
