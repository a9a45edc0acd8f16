// Package browser opens alert links in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Command returns the command that opens rawURL on goos. Only http and
// https URLs are accepted.
func Command(goos, rawURL string) (*exec.Cmd, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	switch goos {
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "windows":
		// rundll32 avoids cmd /c start and its shell parsing
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return exec.Command("xdg-open", rawURL), nil
	}
}

// Open launches the browser without waiting for it.
func Open(rawURL string) error {
	cmd, err := Command(runtime.GOOS, rawURL)
	if err != nil {
		return err
	}
	return cmd.Start()
}
