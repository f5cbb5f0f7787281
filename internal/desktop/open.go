// Package desktop talks to the user's desktop environment: the default
// browser and the notification daemon.
package desktop

import (
	"fmt"
	"net/url"

	"github.com/skratchdot/open-golang/open"
)

// startFunc launches the platform opener without waiting for it.
var startFunc = open.Start

// OpenURL opens rawURL in the default browser. Only http and https URLs are
// accepted so a malformed binding can never launch an arbitrary program.
func OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: unsupported scheme", rawURL)
	}
	if err := startFunc(u.String()); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
